package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/deltegui/bankconsole/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	token TEXT NOT NULL,
	username TEXT NOT NULL,
	expires INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires);
`

type sessionRow struct {
	ID string `db:"id"`
	session.Record
	Expires int64 `db:"expires"`
}

type SessionStore struct {
	db *sqlx.DB
}

// NewSessionStore creates the sessions table when missing.
func NewSessionStore(ctx context.Context, db *sqlx.DB) (*SessionStore, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("cannot create sessions schema: %w", err)
	}
	return &SessionStore{db: db}, nil
}

func (store *SessionStore) Save(ctx context.Context, entry session.Entry) error {
	record, err := session.Encode(entry.Session)
	if err != nil {
		return err
	}
	row := sessionRow{
		ID:      string(entry.ID),
		Record:  record,
		Expires: entry.Expires.UnixMilli(),
	}
	insert := `INSERT INTO sessions (id, kind, token, username, expires)
		VALUES (:id, :kind, :token, :username, :expires)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			token = excluded.token,
			username = excluded.username,
			expires = excluded.expires`
	if _, err := store.db.NamedExecContext(ctx, insert, row); err != nil {
		return fmt.Errorf("cannot save session: %w", err)
	}
	return nil
}

func (store *SessionStore) Get(ctx context.Context, id session.ID) (session.Entry, error) {
	var row sessionRow
	err := store.db.GetContext(ctx, &row,
		"SELECT id, kind, token, username, expires FROM sessions WHERE id = ?", string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return session.Entry{}, session.ErrSessionNotFound
	}
	if err != nil {
		return session.Entry{}, fmt.Errorf("cannot read session: %w", err)
	}
	s, err := session.Decode(row.Record)
	if err != nil {
		return session.Entry{}, fmt.Errorf("corrupted session %s: %w", row.ID, err)
	}
	return session.Entry{
		ID:      session.ID(row.ID),
		Session: s,
		Expires: time.UnixMilli(row.Expires),
	}, nil
}

func (store *SessionStore) Delete(ctx context.Context, id session.ID) error {
	if _, err := store.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", string(id)); err != nil {
		return fmt.Errorf("cannot delete session: %w", err)
	}
	return nil
}

func (store *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := store.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires <= ?", now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("cannot delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cannot count expired sessions: %w", err)
	}
	return int(n), nil
}
