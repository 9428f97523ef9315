// Package diskstore implements a disk-based filesystem storage backend.
package diskstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/discochess/chesshound/internal/codec"
	"github.com/discochess/chesshound/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a disk-based filesystem storage backend. Snapshots live under
// <root>/snapshots/ with the codec's extension.
type Store struct {
	root  string
	codec codec.Codec
}

// New creates a disk store rooted at the given directory, creating it if
// needed. The codec handles compression and decompression.
func New(root string, c codec.Codec) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, "snapshots"), 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &Store{root: root, codec: c}, nil
}

// ReadSnapshot reads and decompresses the named snapshot.
func (s *Store) ReadSnapshot(ctx context.Context, name string) ([]byte, error) {
	// Check for cancellation before starting I/O.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	compressed, err := os.ReadFile(s.snapshotPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	reader, err := s.codec.Reader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot: %w", err)
	}
	return data, nil
}

// WriteSnapshot compresses and writes the named snapshot. The write goes
// through a temp file and rename so a crash never leaves a torn snapshot.
func (s *Store) WriteSnapshot(ctx context.Context, name string, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path := s.snapshotPath(name)
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer, err := s.codec.Writer(tmp)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("creating compressor: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		tmp.Close()
		return fmt.Errorf("compressing snapshot: %w", err)
	}
	if err := writer.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing compressor: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming snapshot: %w", err)
	}
	return nil
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}

// snapshotPath returns the filesystem path for a snapshot name.
func (s *Store) snapshotPath(name string) string {
	filename := name + ".json"
	if ext := s.codec.Extension(); ext != "" {
		filename += "." + ext
	}
	return filepath.Join(s.root, "snapshots", filename)
}
