package dataobject

import (
	"net/http"
)

// serveMeta answers the app's description endpoints:
//
//	GET /_meta/routes           registered endpoints
//	GET /_meta/types            the complex type registry
//	GET /_meta/types/{TypeName} one registry entry
func (a *App) serveMeta(w http.ResponseWriter, req *http.Request, parts []string) {
	if req.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, Errorf(CodeMethodNotAllowed, "method %s not allowed, expected GET", req.Method), a.logger)
		return
	}

	var result any
	switch {
	case len(parts) == 1 && parts[0] == "routes":
		result = a.Routes()
	case len(parts) == 1 && parts[0] == "types":
		if a.serializer == nil {
			result = []any{}
			break
		}
		result = a.serializer.Types()
	case len(parts) == 2 && parts[0] == "types":
		if a.serializer == nil {
			writeError(w, Errorf(CodeNotFound, "type %q not found", parts[1]), a.logger)
			return
		}
		ct, ok := a.serializer.Type(parts[1])
		if !ok {
			writeError(w, Errorf(CodeNotFound, "type %q not found", parts[1]), a.logger)
			return
		}
		result = ct
	default:
		writeError(w, NewError(CodeNotFound, "route not found"), a.logger)
		return
	}

	r := &jsonResult{frontURL: a.frontURL, result: result}
	r.render(w, a.logger)
}
