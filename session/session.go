// Package session keeps who is logged in to the console. A Session value is
// one of LoggedOut, Core or Merchant; the banking API token only exists in
// the logged in variants.
package session

import (
	"fmt"

	"github.com/deltegui/bankconsole/core"
)

type Session interface {
	// Kind is empty for LoggedOut.
	Kind() core.UserKind
	sealed()
}

type LoggedOut struct{}

func (LoggedOut) Kind() core.UserKind { return "" }
func (LoggedOut) sealed()             {}

// Core is a bank staff session.
type Core struct {
	Token    string
	Username string
}

func (Core) Kind() core.UserKind { return core.KindCore }
func (Core) sealed()             {}

// Merchant is a session of a user of one merchant.
type Merchant struct {
	Token    string
	Username string
}

func (Merchant) Kind() core.UserKind { return core.KindMerchant }
func (Merchant) sealed()             {}

// Bearer returns the API token of a logged in session.
func Bearer(s Session) (string, bool) {
	switch v := s.(type) {
	case Core:
		return v.Token, true
	case Merchant:
		return v.Token, true
	default:
		return "", false
	}
}

func Username(s Session) string {
	switch v := s.(type) {
	case Core:
		return v.Username
	case Merchant:
		return v.Username
	default:
		return ""
	}
}

func IsLoggedIn(s Session) bool {
	_, ok := Bearer(s)
	return ok
}

// Dashboard is where s lands after login, or "/" when logged out.
func Dashboard(s Session) string {
	if s == nil {
		return "/"
	}
	return s.Kind().Dashboard()
}

// Record is the storable form of a logged in Session.
type Record struct {
	Kind     core.UserKind `db:"kind" json:"kind"`
	Token    string        `db:"token" json:"token"`
	Username string        `db:"username" json:"username"`
}

func Encode(s Session) (Record, error) {
	switch v := s.(type) {
	case Core:
		return Record{Kind: core.KindCore, Token: v.Token, Username: v.Username}, nil
	case Merchant:
		return Record{Kind: core.KindMerchant, Token: v.Token, Username: v.Username}, nil
	default:
		return Record{}, ErrNotLoggedIn
	}
}

func Decode(r Record) (Session, error) {
	if r.Token == "" {
		return LoggedOut{}, fmt.Errorf("session record without token")
	}
	switch r.Kind {
	case core.KindCore:
		return Core{Token: r.Token, Username: r.Username}, nil
	case core.KindMerchant:
		return Merchant{Token: r.Token, Username: r.Username}, nil
	default:
		return LoggedOut{}, fmt.Errorf("unknown session kind '%s'", r.Kind)
	}
}
