// Package middleware holds the cross-cutting handlers of every console
// route: request logging with request ids, panic recovery and CORS.
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deltegui/bankconsole"
)

const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Logger gives every request an id and a logger carrying it, and logs the
// request once it is served. An incoming X-Request-Id is kept.
func Logger(base zerolog.Logger) bankconsole.Middleware {
	return func(next bankconsole.Handler) bankconsole.Handler {
		return func(ctx *bankconsole.Context) error {
			start := time.Now()
			id := ctx.Req.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			logger := base.With().Str("request_id", id).Logger()
			ctx.Req = ctx.Req.WithContext(logger.WithContext(ctx.Req.Context()))
			ctx.Set(requestIDKey{}, id)
			ctx.Res.Header().Set(RequestIDHeader, id)

			rec := &statusRecorder{ResponseWriter: ctx.Res}
			ctx.Res = rec
			err := next(ctx)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			event := logger.Info()
			if status >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.
				Str("method", ctx.Req.Method).
				Str("path", ctx.Req.URL.Path).
				Str("remote", ctx.Req.RemoteAddr).
				Str("user_agent", ctx.Req.UserAgent()).
				Int("status", status).
				Dur("duration", time.Since(start)).
				Msg("request served")
			return err
		}
	}
}

// RequestID is the id Logger gave to the request.
func RequestID(ctx *bankconsole.Context) string {
	id, _ := ctx.Get(requestIDKey{}).(string)
	return id
}

// Recover turns a panic into a 500 logged with the request logger.
func Recover(next bankconsole.Handler) bankconsole.Handler {
	return func(ctx *bankconsole.Context) (err error) {
		defer func() {
			if recovered := recover(); recovered != nil {
				ctx.Logger().Error().
					Interface("panic", recovered).
					Str("path", ctx.Req.URL.Path).
					Msg("recovered from panic")
				err = ctx.InternalServerError(http.StatusText(http.StatusInternalServerError))
			}
		}()
		return next(ctx)
	}
}
