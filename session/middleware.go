package session

import (
	"github.com/deltegui/bankconsole"
	"github.com/deltegui/bankconsole/core"
)

type contextKey struct{}

type current struct {
	id      ID
	session Session
}

// Load reads the session once per request and leaves it in the context
// for guards, handlers and layouts.
func Load(manager *Manager) bankconsole.Middleware {
	return func(next bankconsole.Handler) bankconsole.Handler {
		return func(ctx *bankconsole.Context) error {
			load(manager, ctx)
			return next(ctx)
		}
	}
}

func load(manager *Manager, ctx *bankconsole.Context) current {
	if c, ok := ctx.Get(contextKey{}).(current); ok {
		return c
	}
	id, s := manager.Read(ctx.Req)
	c := current{id: id, session: s}
	ctx.Set(contextKey{}, c)
	return c
}

func require(manager *Manager, kind core.UserKind) bankconsole.Middleware {
	return func(next bankconsole.Handler) bankconsole.Handler {
		return func(ctx *bankconsole.Context) error {
			c := load(manager, ctx)
			if !IsLoggedIn(c.session) {
				ctx.Logger().Debug().Str("path", ctx.Req.URL.Path).Msg("not logged in, redirecting home")
				return ctx.Redirect("/")
			}
			if c.session.Kind() != kind {
				return ctx.Redirect(Dashboard(c.session))
			}
			return next(ctx)
		}
	}
}

// RequireCore lets only core sessions through. Merchants go to their
// dashboard, logged out users home.
func RequireCore(manager *Manager) bankconsole.Middleware {
	return require(manager, core.KindCore)
}

func RequireMerchant(manager *Manager) bankconsole.Middleware {
	return require(manager, core.KindMerchant)
}

// PublicOnly sends logged in users to their dashboard.
func PublicOnly(manager *Manager) bankconsole.Middleware {
	return func(next bankconsole.Handler) bankconsole.Handler {
		return func(ctx *bankconsole.Context) error {
			c := load(manager, ctx)
			if IsLoggedIn(c.session) {
				return ctx.Redirect(Dashboard(c.session))
			}
			return next(ctx)
		}
	}
}

// HandleUnauthorized ends the session when err is a 401 from the banking
// API and sends the user home. It reports whether it answered the request.
func HandleUnauthorized(manager *Manager, ctx *bankconsole.Context, err error) bool {
	failure, ok := core.AsFailure(err)
	if !ok || !failure.IsUnauthorized() {
		return false
	}
	if !HaveSession(ctx) {
		return false
	}
	ctx.Logger().Warn().Str("path", ctx.Req.URL.Path).Msg("banking api rejected the session token, logging out")
	if err := manager.Logout(ctx.Context(), ctx.Res, ctx.Req); err != nil {
		ctx.Logger().Error().Err(err).Msg("cannot logout after unauthorized response")
	}
	ctx.Set(contextKey{}, current{session: LoggedOut{}})
	_ = ctx.Redirect("/")
	return true
}
