package sqlstore_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltegui/bankconsole/cypher"
	"github.com/deltegui/bankconsole/session"
	"github.com/deltegui/bankconsole/sqlstore"
)

func newStore(t *testing.T) *sqlstore.SessionStore {
	t.Helper()
	ctx := context.Background()
	db, err := sqlstore.Connect(ctx, sqlstore.Configuration{
		Connection: filepath.Join(t.TempDir(), "data", "sessions.db"),
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store, err := sqlstore.NewSessionStore(ctx, db)
	require.NoError(t, err)
	return store
}

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	entry := session.Entry{
		ID:      "abc",
		Session: session.Merchant{Token: "tok", Username: "bob"},
		Expires: now.Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, entry))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, entry.Session, got.Session)
	assert.True(t, entry.Expires.Equal(got.Expires))

	entry.Session = session.Core{Token: "other", Username: "ana"}
	require.NoError(t, store.Save(ctx, entry))
	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, session.Core{Token: "other", Username: "ana"}, got.Session)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestLoggedOutIsNotStored(t *testing.T) {
	store := newStore(t)
	err := store.Save(context.Background(), session.Entry{ID: "x", Session: session.LoggedOut{}})
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Save(ctx, session.Entry{ID: "old", Session: session.Core{Token: "a"}, Expires: now.Add(-time.Second)}))
	require.NoError(t, store.Save(ctx, session.Entry{ID: "new", Session: session.Core{Token: "b"}, Expires: now.Add(time.Hour)}))

	n, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = store.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestManagerOverSQLite(t *testing.T) {
	cy, err := cypher.New()
	require.NoError(t, err)
	manager := session.NewManager(newStore(t), cy, session.ManagerOptions{Timeout: time.Hour, Logger: zerolog.Nop()})
	id, err := manager.Login(context.Background(), discard{}, session.Core{Token: "tok", Username: "ana"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

type discard struct{}

func (discard) Header() http.Header         { return http.Header{} }
func (discard) Write(b []byte) (int, error) { return len(b), nil }
func (discard) WriteHeader(int)             {}
