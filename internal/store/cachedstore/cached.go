package cachedstore

import (
	"context"

	"github.com/discochess/chesshound/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store wraps another Store with caching.
type Store struct {
	underlying store.Store
	backend    Backend
}

// New creates a new cached store wrapping the given store.
func New(underlying store.Store, backend Backend) *Store {
	return &Store{
		underlying: underlying,
		backend:    backend,
	}
}

// ReadSnapshot reads a snapshot, checking the cache first.
func (s *Store) ReadSnapshot(ctx context.Context, name string) ([]byte, error) {
	// Check cache first.
	if data, ok := s.backend.Get(name); ok {
		return data, nil
	}

	// Cache miss - read from underlying store.
	data, err := s.underlying.ReadSnapshot(ctx, name)
	if err != nil {
		return nil, err
	}

	// Cache the result.
	s.backend.Set(name, data)

	return data, nil
}

// WriteSnapshot writes through to the underlying store and refreshes the
// cached copy so later reads return the new data.
func (s *Store) WriteSnapshot(ctx context.Context, name string, data []byte) error {
	if err := s.underlying.WriteSnapshot(ctx, name, data); err != nil {
		return err
	}
	s.backend.Set(name, data)
	return nil
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.underlying.Close()
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	return s.backend.Stats()
}
