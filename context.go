package dataobject

import (
	"context"
	"net/http"
)

// Context carries the metadata of the current call. Handlers receive it as
// their context.Context; use [FromContext] to get it back.
type Context interface {
	context.Context

	// Service returns the service name, e.g. "Orders".
	Service() string

	// EndpointName returns the endpoint name within the service, e.g. "Get".
	EndpointName() string

	// EndpointID returns "Service.EndpointName".
	EndpointID() string

	// HTTPRequest returns the underlying request. It is nil outside HTTP.
	HTTPRequest() *http.Request

	// HTTPWriter returns the response writer. It is nil outside HTTP.
	HTTPWriter() http.ResponseWriter
}

type contextKey struct{ name string }

var rpcContextKey = &contextKey{"dataobject"}

// rpcContext implements Context and carries the app configuration down to
// the handler.
type rpcContext struct {
	context.Context

	service string
	name    string
	request *http.Request
	writer  http.ResponseWriter

	settings
}

func (c *rpcContext) Service() string                 { return c.service }
func (c *rpcContext) EndpointName() string            { return c.name }
func (c *rpcContext) EndpointID() string              { return c.service + "." + c.name }
func (c *rpcContext) HTTPRequest() *http.Request      { return c.request }
func (c *rpcContext) HTTPWriter() http.ResponseWriter { return c.writer }

func newContext(parent context.Context, w http.ResponseWriter, r *http.Request, service, name string) *rpcContext {
	ctx := &rpcContext{
		service: service,
		name:    name,
		request: r,
		writer:  w,
	}
	ctx.Context = context.WithValue(parent, rpcContextKey, ctx)
	return ctx
}

// NewContext returns a Context for calling handlers and interceptors outside
// an HTTP request, typically in tests.
func NewContext(parent context.Context, service, name string) Context {
	return newContext(parent, nil, nil, service, name)
}

// FromContext returns the Context of the current call. It also works on
// contexts derived from it with context.WithValue and friends.
func FromContext(ctx context.Context) (Context, bool) {
	if c, ok := ctx.(Context); ok {
		return c, true
	}
	c, ok := ctx.Value(rpcContextKey).(*rpcContext)
	return c, ok
}

// SetHeader sets a response header from within a handler. It does nothing
// outside an HTTP request.
func SetHeader(ctx context.Context, key, value string) {
	if c, ok := FromContext(ctx); ok && c.HTTPWriter() != nil {
		c.HTTPWriter().Header().Set(key, value)
	}
}
