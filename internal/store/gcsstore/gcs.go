// Package gcsstore implements a Google Cloud Storage backend.
package gcsstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/discochess/chesshound/internal/codec"
	"github.com/discochess/chesshound/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a Google Cloud Storage backend.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	codec  codec.Codec
}

// New creates a new GCS store.
// The bucket must already exist.
// The codec handles compression/decompression.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client: client,
		bucket: client.Bucket(bucketName),
		codec:  c,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// ReadSnapshot reads and decompresses the named snapshot.
func (s *Store) ReadSnapshot(ctx context.Context, name string) ([]byte, error) {
	// Check for cancellation before starting.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	obj := s.bucket.Object(s.snapshotKey(name))

	reader, err := obj.NewReader(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	// Decompress using codec.
	decompressor, err := s.codec.Reader(reader)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer decompressor.Close()

	data, err := io.ReadAll(decompressor)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot: %w", err)
	}

	return data, nil
}

// WriteSnapshot compresses and writes the named snapshot. GCS object
// writes are atomic, so a failed upload never leaves a torn snapshot.
func (s *Store) WriteSnapshot(ctx context.Context, name string, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	writer := s.bucket.Object(s.snapshotKey(name)).NewWriter(ctx)

	compressor, err := s.codec.Writer(writer)
	if err != nil {
		writer.Close()
		return fmt.Errorf("creating compressor: %w", err)
	}
	if _, err := io.Copy(compressor, bytes.NewReader(data)); err != nil {
		compressor.Close()
		writer.Close()
		return fmt.Errorf("compressing snapshot: %w", err)
	}
	if err := compressor.Close(); err != nil {
		writer.Close()
		return fmt.Errorf("flushing compressor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return s.client.Close()
}

// snapshotKey returns the full object key for a snapshot name.
func (s *Store) snapshotKey(name string) string {
	key := s.prefix + "snapshots/" + name + ".json"
	if ext := s.codec.Extension(); ext != "" {
		key += "." + ext
	}
	return key
}
