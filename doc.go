// Package dataobject serves data objects over HTTP.
//
// Handlers are plain functions registered on a [Service]:
//
//	app := dataobject.NewApp(serializer)
//	orders := app.Service("Orders")
//	orders.Register("Get", dataobject.Query(repo.Get))
//	orders.Register("Place", dataobject.Exec(repo.Place))
//	http.ListenAndServe(":8080", app.Handler())
//
// Query handlers answer GET requests and decode their request from the URL
// query. Exec handlers answer POST requests with a JSON body. A result whose
// type is registered with the [Serializer] is converted by its accessors
// (see package reflection); any other result is encoded as is.
//
// The app also serves its own description: GET /_meta/routes lists the
// registered routes and GET /_meta/types[/{TypeName}] returns the complex
// type registry.
package dataobject
