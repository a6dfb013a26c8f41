// Package middleware provides HTTP middleware and interceptors for
// dataobject apps.
package middleware

import (
	"log/slog"
	"time"

	"github.com/broady/dataobject"
)

// LoggingInterceptor creates an interceptor that logs service calls using slog.
// It logs the start and end of each call with the endpoint, the request id
// when RequestID runs in front of the app, the duration, and the error.
// Failures the client caused are logged as warnings.
func LoggingInterceptor(logger *slog.Logger) dataobject.UnaryInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx dataobject.Context, req any, handler dataobject.HandlerFunc) (any, error) {
		start := time.Now()
		attrs := []any{slog.String("endpoint", ctx.EndpointID())}
		if id := RequestIDFrom(ctx); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}

		logger.DebugContext(ctx, "request started", attrs...)

		res, err := handler(ctx, req)
		attrs = append(attrs, slog.Duration("duration", time.Since(start)))

		if err != nil {
			svcErr := dataobject.DefaultErrorTransformer(err)
			attrs = append(attrs, slog.String("code", string(svcErr.Code)), slog.Any("error", err))
			level := slog.LevelWarn
			if svcErr.Code.HTTPStatus() >= 500 {
				level = slog.LevelError
			}
			logger.Log(ctx, level, "request failed", attrs...)
		} else {
			logger.InfoContext(ctx, "request completed", attrs...)
		}

		return res, err
	}
}
