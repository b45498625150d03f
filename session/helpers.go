package session

import "github.com/deltegui/bankconsole"

// Get returns the session loaded for the request, LoggedOut when no guard
// or Load middleware ran.
func Get(ctx *bankconsole.Context) Session {
	c, ok := ctx.Get(contextKey{}).(current)
	if !ok || c.session == nil {
		return LoggedOut{}
	}
	return c.session
}

// GetID is the store id of the request session. It scopes cached API data.
func GetID(ctx *bankconsole.Context) ID {
	c, _ := ctx.Get(contextKey{}).(current)
	return c.id
}

func HaveSession(ctx *bankconsole.Context) bool {
	return IsLoggedIn(Get(ctx))
}
