package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deltegui/bankconsole/clock"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/cypher"
)

const CookieName = "bankconsole_session"

// Manager is the only writer and reader of sessions. The cookie only
// carries the encrypted id; the session itself lives in the Store.
type Manager struct {
	store   Store
	cypher  core.Cypher
	timeout time.Duration
	clock   clock.Clock
	secure  bool
	log     zerolog.Logger
}

type ManagerOptions struct {
	Timeout time.Duration
	Clock   clock.Clock

	// Secure marks the cookie https only.
	Secure bool
	Logger zerolog.Logger
}

func NewManager(store Store, cy core.Cypher, opts ManagerOptions) *Manager {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = core.OneDayDuration
	}
	return &Manager{
		store:   store,
		cypher:  cy,
		timeout: opts.Timeout,
		clock:   opts.Clock,
		secure:  opts.Secure,
		log:     opts.Logger.With().Str("component", "session").Logger(),
	}
}

func NewInMemoryManager(cy core.Cypher, opts ManagerOptions) *Manager {
	return NewManager(NewMemoryStore(), cy, opts)
}

// Login stores s and writes its cookie. Only logged in sessions can be
// stored.
func (manager *Manager) Login(ctx context.Context, w http.ResponseWriter, s Session) (ID, error) {
	if !IsLoggedIn(s) {
		return "", ErrNotLoggedIn
	}
	entry := Entry{
		ID:      ID(uuid.NewString()),
		Session: s,
		Expires: manager.clock.Now().Add(manager.timeout),
	}
	if err := manager.store.Save(ctx, entry); err != nil {
		return "", fmt.Errorf("cannot save session: %w", err)
	}
	err := cypher.SetCookie(w, manager.cypher, cypher.CookieOptions{
		Name:     CookieName,
		Value:    string(entry.ID),
		Expires:  entry.Expires,
		MaxAge:   manager.timeout,
		HttpOnly: true,
		Secure:   manager.secure,
	})
	if err != nil {
		return "", fmt.Errorf("cannot write session cookie: %w", err)
	}
	manager.log.Info().Str("kind", string(s.Kind())).Str("username", Username(s)).Msg("session started")
	return entry.ID, nil
}

func (manager *Manager) readID(req *http.Request) (ID, error) {
	raw, err := cypher.ReadCookie(req, manager.cypher, CookieName)
	if err != nil {
		return "", fmt.Errorf("cannot read session cookie: %w", err)
	}
	return ID(raw), nil
}

// Read returns the session of req. Any problem reading it yields LoggedOut.
func (manager *Manager) Read(req *http.Request) (ID, Session) {
	id, err := manager.readID(req)
	if err != nil {
		return "", LoggedOut{}
	}
	entry, err := manager.store.Get(req.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			manager.log.Error().Err(err).Msg("cannot read session")
		}
		return "", LoggedOut{}
	}
	if !entry.IsValid(manager.clock.Now()) {
		if err := manager.store.Delete(req.Context(), id); err != nil {
			manager.log.Error().Err(err).Msg("cannot delete expired session")
		}
		return "", LoggedOut{}
	}
	return entry.ID, entry.Session
}

// Logout removes the session of req, if any, and clears the cookie.
func (manager *Manager) Logout(ctx context.Context, w http.ResponseWriter, req *http.Request) error {
	cypher.DeleteCookie(w, CookieName)
	id, err := manager.readID(req)
	if err != nil {
		return nil
	}
	if err := manager.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("cannot delete session: %w", err)
	}
	manager.log.Info().Msg("session finished")
	return nil
}

// Sweep removes expired sessions from the store.
func (manager *Manager) Sweep(ctx context.Context) (int, error) {
	return manager.store.DeleteExpired(ctx, manager.clock.Now())
}

// RunJanitor sweeps every interval until ctx ends.
func (manager *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := manager.clock.Tick(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			n, err := manager.Sweep(ctx)
			if err != nil {
				manager.log.Error().Err(err).Msg("cannot sweep sessions")
				continue
			}
			if n > 0 {
				manager.log.Debug().Int("removed", n).Msg("expired sessions removed")
			}
		}
	}
}
