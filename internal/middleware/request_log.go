package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

const (
	// HeaderRequestID carries the request id in both directions.
	HeaderRequestID = "X-Request-ID"
	// RequestIDKey is the user value key holding the request id.
	RequestIDKey = "request_id"
)

// RequestLog tags each request with an id and logs its outcome and duration.
func RequestLog(logger *slog.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	logger = logger.With("component", "http")
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			startTime := time.Now()

			id := string(ctx.Request.Header.Peek(HeaderRequestID))
			if id == "" {
				id = uuid.NewString()
			}
			ctx.SetUserValue(RequestIDKey, id)
			ctx.Response.Header.Set(HeaderRequestID, id)

			method := string(ctx.Method())
			path := string(ctx.Path())
			logger.Debug("request", "method", method, "path", path, "request_id", id, "remote", ctx.RemoteAddr().String())

			next(ctx)

			status := ctx.Response.StatusCode()
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			logger.LogAttrs(ctx, level, "response",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(startTime)),
				slog.String("request_id", id),
			)
		}
	}
}
