package persistence

import (
	"context"
	"sync"
)

// KVStore is a string-keyed blob store in the manner of browser local
// storage. Mutate must apply fn atomically with respect to other Mutate calls
// on the same key.
type KVStore interface {
	// Get returns nil when the key is absent
	Get(ctx context.Context, key string) ([]byte, error)
	// Mutate replaces the value with fn(current). current is nil when the key
	// is absent. Returning an error from fn leaves the value unchanged, and
	// returning an empty value removes the key.
	Mutate(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
}

// MemoryKVStore keeps values in process memory
type MemoryKVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKVStore creates an empty in-memory store
func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value
func (s *MemoryKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

// Mutate applies fn under the store lock
func (s *MemoryKVStore) Mutate(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var current []byte
	if v, ok := s.data[key]; ok {
		current = append([]byte(nil), v...)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if len(next) == 0 {
		delete(s.data, key)
		return nil
	}
	s.data[key] = append([]byte(nil), next...)
	return nil
}

var _ KVStore = (*MemoryKVStore)(nil)
