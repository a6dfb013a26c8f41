package dataobject

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
	schemaDecoder.SetAliasTag("json")
}

const (
	primitiveQuery = "query"
	primitiveExec  = "exec"
)

// Endpoint is a registrable handler. Create one with [Query] or [Exec].
type Endpoint interface {
	Metadata() *RouteMetadata
}

// endpointHandler is implemented by the handlers of this package.
type endpointHandler interface {
	Endpoint
	serveHTTP(ctx *rpcContext)
}

// RouteMetadata describes a registered endpoint.
type RouteMetadata struct {
	Service    string       `json:"service"`
	Name       string       `json:"name"`
	Primitive  string       `json:"primitive"`
	HTTPMethod string       `json:"http_method"`
	Path       string       `json:"path"`
	ResultType string       `json:"result_type,omitempty"`
	Request    reflect.Type `json:"-"`
	Response   reflect.Type `json:"-"`
}

// Handler serves one endpoint backed by a typed function.
type Handler[Req any, Res any] struct {
	fn                 func(context.Context, Req) (Res, error)
	primitive          string
	interceptors       []UnaryInterceptor
	maxRequestBodySize *uint64
	cacheTTL           time.Duration
	status             int
}

// Query creates a GET endpoint. The request is decoded from the URL query
// using the json tags of Req (gorilla/schema).
func Query[Req any, Res any](fn func(context.Context, Req) (Res, error)) *Handler[Req, Res] {
	return &Handler[Req, Res]{fn: fn, primitive: primitiveQuery}
}

// Exec creates a POST endpoint. The request is decoded from a JSON body.
func Exec[Req any, Res any](fn func(context.Context, Req) (Res, error)) *Handler[Req, Res] {
	return &Handler[Req, Res]{fn: fn, primitive: primitiveExec}
}

// WithUnaryInterceptor adds an interceptor that runs after the app and
// service interceptors.
func (h *Handler[Req, Res]) WithUnaryInterceptor(i UnaryInterceptor) *Handler[Req, Res] {
	h.interceptors = append(h.interceptors, i)
	return h
}

// WithMaxRequestBodySize overrides the app's body size limit for this
// endpoint. 0 means no limit.
func (h *Handler[Req, Res]) WithMaxRequestBodySize(size uint64) *Handler[Req, Res] {
	h.maxRequestBodySize = &size
	return h
}

// CacheControl sets a max-age Cache-Control header on successful responses.
// It only applies to query endpoints.
func (h *Handler[Req, Res]) CacheControl(ttl time.Duration) *Handler[Req, Res] {
	h.cacheTTL = ttl
	return h
}

// WithStatus sets the status code of successful responses. The default is
// 200.
func (h *Handler[Req, Res]) WithStatus(code int) *Handler[Req, Res] {
	h.status = code
	return h
}

// Metadata implements Endpoint.
func (h *Handler[Req, Res]) Metadata() *RouteMetadata {
	httpMethod := http.MethodPost
	if h.primitive == primitiveQuery {
		httpMethod = http.MethodGet
	}
	return &RouteMetadata{
		Primitive:  h.primitive,
		HTTPMethod: httpMethod,
		Request:    reflect.TypeFor[Req](),
		Response:   reflect.TypeFor[Res](),
	}
}

func (h *Handler[Req, Res]) serveHTTP(ctx *rpcContext) {
	req, err := h.decodeRequest(ctx)
	if err != nil {
		handleError(ctx, err)
		return
	}

	combined := make([]UnaryInterceptor, 0, len(ctx.interceptors)+len(h.interceptors))
	combined = append(combined, ctx.interceptors...)
	combined = append(combined, h.interceptors...)

	final := func(c context.Context, reqAny any) (any, error) {
		typed, ok := reqAny.(Req)
		if !ok {
			return nil, Errorf(CodeInternal, "interceptor replaced the request with %T", reqAny)
		}
		return h.fn(c, typed)
	}

	var res any
	if chain := chainInterceptors(combined); chain != nil {
		res, err = chain(ctx, req, final)
	} else {
		res, err = final(ctx, req)
	}
	if err != nil {
		handleError(ctx, err)
		return
	}

	if ctx.serializer != nil {
		res, err = ctx.serializer.Serialize(res)
		if err != nil {
			handleError(ctx, err)
			return
		}
	}

	if h.primitive == primitiveQuery && h.cacheTTL > 0 {
		ctx.writer.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(h.cacheTTL.Seconds())))
	}
	result := &jsonResult{status: h.status, frontURL: ctx.frontURL, result: res}
	result.render(ctx.writer, ctx.logger)
}

func (h *Handler[Req, Res]) decodeRequest(ctx *rpcContext) (Req, error) {
	var req Req
	r := ctx.request

	if h.primitive == primitiveQuery {
		reqType := reflect.TypeFor[Req]()
		if reqType.Kind() == reflect.Ptr {
			val := reflect.New(reqType.Elem())
			if err := schemaDecoder.Decode(val.Interface(), r.URL.Query()); err != nil {
				return req, Errorf(CodeInvalidArgument, "failed to decode query: %v", err)
			}
			req = val.Interface().(Req)
		} else if reqType.Kind() == reflect.Struct {
			if err := schemaDecoder.Decode(&req, r.URL.Query()); err != nil {
				return req, Errorf(CodeInvalidArgument, "failed to decode query: %v", err)
			}
		}
	} else if r.Body != nil && r.Body != http.NoBody {
		limit := ctx.maxRequestBodySize
		if h.maxRequestBodySize != nil {
			limit = *h.maxRequestBodySize
		}
		body := io.Reader(r.Body)
		if limit > 0 {
			body = http.MaxBytesReader(ctx.writer, r.Body, int64(limit))
		}
		if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return req, Errorf(CodePayloadTooLarge, "request body exceeds %d bytes", maxErr.Limit)
			}
			return req, Errorf(CodeInvalidArgument, "failed to decode body: %v", err)
		}
	}
	if v := reflect.ValueOf(&req).Elem(); v.Kind() == reflect.Ptr && v.IsNil() && v.Type().Elem().Kind() == reflect.Struct {
		v.Set(reflect.New(v.Type().Elem()))
	}

	if shouldValidate(req) {
		if err := validate.Struct(req); err != nil {
			return req, err
		}
	}
	return req, nil
}

// shouldValidate reports whether req is a non-nil struct or pointer to one.
func shouldValidate(req any) bool {
	v := reflect.ValueOf(req)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	return v.Kind() == reflect.Struct
}

func handleError(ctx *rpcContext, err error) {
	var svcErr *Error
	if ctx.errorTransformer != nil {
		svcErr = ctx.errorTransformer(err)
	}
	if svcErr == nil {
		svcErr = DefaultErrorTransformer(err)
	}
	if ctx.maskInternalErrors && svcErr.Code == CodeInternal {
		svcErr = NewError(CodeInternal, "internal server error")
	}
	if ctx.frontURL != "" {
		ctx.writer.Header().Set("Access-Control-Allow-Origin", ctx.frontURL)
	}
	writeError(ctx.writer, svcErr, ctx.logger)
}
