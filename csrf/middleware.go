package csrf

import (
	"net/http"

	"github.com/deltegui/bankconsole"
)

type contextKey struct{}

// Middleware rejects unsafe requests without a valid token and leaves a
// fresh token in the request for the rendered forms.
func Middleware(csrf *Csrf) bankconsole.Middleware {
	return func(next bankconsole.Handler) bankconsole.Handler {
		return func(ctx *bankconsole.Context) error {
			if !safeMethod(ctx.Req.Method) && !csrf.CheckRequest(ctx.Req) {
				return ctx.Forbidden("invalid csrf token")
			}
			token, err := csrf.Generate()
			if err != nil {
				return err
			}
			ctx.Set(contextKey{}, token)
			return next(ctx)
		}
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Token is the token issued for the current request, empty when the
// middleware did not run.
func Token(ctx *bankconsole.Context) string {
	token, _ := ctx.Get(contextKey{}).(string)
	return token
}
