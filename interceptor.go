package dataobject

import "context"

// HandlerFunc represents the next handler in an interceptor chain.
type HandlerFunc func(ctx context.Context, req any) (res any, err error)

// UnaryInterceptor runs around an endpoint call. It can inspect or replace
// the request and the result, or return an error without calling handler.
// The result it sees is the handler's return value, before serialization.
//
//	func timing(ctx dataobject.Context, req any, handler dataobject.HandlerFunc) (any, error) {
//		start := time.Now()
//		res, err := handler(ctx, req)
//		slog.Info("call", "endpoint", ctx.EndpointID(), "took", time.Since(start))
//		return res, err
//	}
type UnaryInterceptor func(ctx Context, req any, handler HandlerFunc) (res any, err error)

// chainInterceptors combines interceptors into one. The first interceptor is
// the outermost.
func chainInterceptors(interceptors []UnaryInterceptor) UnaryInterceptor {
	switch len(interceptors) {
	case 0:
		return nil
	case 1:
		return interceptors[0]
	}
	return func(ctx Context, req any, handler HandlerFunc) (any, error) {
		return interceptors[0](ctx, req, bindInterceptors(interceptors[1:], handler))
	}
}

// bindInterceptors returns handler wrapped in interceptors. Each interceptor
// must pass on a context derived from the call's Context.
func bindInterceptors(interceptors []UnaryInterceptor, handler HandlerFunc) HandlerFunc {
	if len(interceptors) == 0 {
		return handler
	}
	current, next := interceptors[0], bindInterceptors(interceptors[1:], handler)
	return func(ctx context.Context, req any) (any, error) {
		c, ok := FromContext(ctx)
		if !ok {
			return nil, NewError(CodeInternal, "interceptor replaced the call context")
		}
		return current(c, req, next)
	}
}
