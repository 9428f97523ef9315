// Package store defines the storage backend interface for tree snapshots.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a snapshot does not exist in the store.
var ErrNotFound = errors.New("store: snapshot not found")

// Store defines the interface for snapshot storage backends. The snapshot
// payload is opaque bytes; backends handle naming, placement, and
// compression internally.
type Store interface {
	// ReadSnapshot reads and decompresses the named snapshot.
	ReadSnapshot(ctx context.Context, name string) ([]byte, error)

	// WriteSnapshot compresses and stores the named snapshot,
	// overwriting any existing one.
	WriteSnapshot(ctx context.Context, name string, data []byte) error

	// Close releases any resources held by the store.
	Close() error
}
