package snapshot

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore is an in-process snapshot store. Values returns a copy, so a
// reader never observes a half-applied Put.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]any)}
}

// Values returns a consistent copy of the stored values
func (m *MemoryStore) Values(ctx context.Context) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.values), nil
}

// Put merges values into the store atomically
func (m *MemoryStore) Put(ctx context.Context, values map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	maps.Copy(m.values, values)
	return nil
}
