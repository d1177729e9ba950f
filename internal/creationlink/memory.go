package creationlink

import (
	"context"
	"sync"
	"time"

	"github.com/threadline/threadline/internal/model"
)

// MemoryStore is an in-memory Store implementation. It backs unit tests
// and single-node development setups; production uses the Postgres store
// in the repository package.
type MemoryStore struct {
	mu   sync.Mutex
	keys map[string]model.CreationKey
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		keys: make(map[string]model.CreationKey),
	}
}

// Get returns the record for key, or ErrKeyNotFound.
func (m *MemoryStore) Get(ctx context.Context, key string) (*model.CreationKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.keys[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := rec
	return &out, nil
}

// Put stores a record, overwriting any previous record for the same key.
func (m *MemoryStore) Put(ctx context.Context, rec *model.CreationKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys[rec.Key] = *rec
	return nil
}

// DeleteIfFresh deletes the record if it exists and was created at or
// after notBefore. The check and the delete happen under one lock, so
// concurrent callers for the same key see at most one true result.
func (m *MemoryStore) DeleteIfFresh(ctx context.Context, key string, notBefore time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.keys[key]
	if !ok {
		return false, nil
	}
	if rec.CreatedAt.Before(notBefore) {
		return false, nil
	}

	delete(m.keys, key)
	return true, nil
}

// SetCreatedAt rewinds or advances a key's creation timestamp. Test hook
// for exercising expiry.
func (m *MemoryStore) SetCreatedAt(key string, createdAt time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.keys[key]
	if !ok {
		return false
	}
	rec.CreatedAt = createdAt
	m.keys[key] = rec
	return true
}

// Len reports the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}
