// Package memstore provides an in-memory store implementation for testing.
package memstore

import (
	"context"
	"sync"

	"github.com/discochess/chesshound/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is an in-memory store for testing.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		snapshots: make(map[string][]byte),
	}
}

// SetSnapshot sets the data for a snapshot (for test setup).
// The data is copied to prevent caller mutations from affecting the store.
func (s *Store) SetSnapshot(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]byte, len(data))
	copy(copied, data)
	s.snapshots[name] = copied
}

// ReadSnapshot reads a snapshot from memory.
func (s *Store) ReadSnapshot(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.snapshots[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	return data, nil
}

// WriteSnapshot stores a snapshot in memory, overwriting any existing one.
func (s *Store) WriteSnapshot(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]byte, len(data))
	copy(copied, data)
	s.snapshots[name] = copied
	return nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
