package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotLoggedIn     = errors.New("session is not logged in")
)

type ID string

type Entry struct {
	ID      ID
	Session Session
	Expires time.Time
}

func (entry Entry) IsValid(now time.Time) bool {
	return now.Before(entry.Expires)
}

// Store keeps session entries server side. Get returns ErrSessionNotFound
// for unknown ids.
type Store interface {
	Save(ctx context.Context, entry Entry) error
	Get(ctx context.Context, id ID) (Entry, error)
	Delete(ctx context.Context, id ID) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type MemoryStore struct {
	values map[ID]Entry
	mutex  sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[ID]Entry),
	}
}

func (store *MemoryStore) Save(_ context.Context, entry Entry) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.values[entry.ID] = entry
	return nil
}

func (store *MemoryStore) Get(_ context.Context, id ID) (Entry, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	entry, ok := store.values[id]
	if !ok {
		return Entry{}, ErrSessionNotFound
	}
	return entry, nil
}

func (store *MemoryStore) Delete(_ context.Context, id ID) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	delete(store.values, id)
	return nil
}

func (store *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	n := 0
	for id, entry := range store.values {
		if !entry.IsValid(now) {
			delete(store.values, id)
			n++
		}
	}
	return n, nil
}

func (store *MemoryStore) Len() int {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return len(store.values)
}
