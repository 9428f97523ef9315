package cachedstore

import (
	"context"
	"errors"
	"testing"

	"github.com/discochess/chesshound/internal/store"
)

// fakeBackend is a simple in-memory backend for testing.
type fakeBackend struct {
	data   map[string][]byte
	hits   int64
	misses int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: make(map[string][]byte)}
}

func (b *fakeBackend) Get(name string) ([]byte, bool) {
	if data, ok := b.data[name]; ok {
		b.hits++
		return data, true
	}
	b.misses++
	return nil, false
}

func (b *fakeBackend) Set(name string, data []byte) {
	b.data[name] = data
}

func (b *fakeBackend) Stats() Stats {
	return Stats{Hits: b.hits, Misses: b.misses, Size: len(b.data)}
}

// fakeStore is a simple store for testing.
type fakeStore struct {
	data map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (s *fakeStore) ReadSnapshot(ctx context.Context, name string) ([]byte, error) {
	if data, ok := s.data[name]; ok {
		return data, nil
	}
	return nil, store.ErrNotFound
}

func (s *fakeStore) WriteSnapshot(ctx context.Context, name string, data []byte) error {
	s.data[name] = data
	return nil
}

func (s *fakeStore) Close() error {
	return nil
}

func TestStore_CacheHit(t *testing.T) {
	backend := newFakeBackend()
	underlying := newFakeStore()

	// Pre-populate cache.
	backend.Set("main", []byte("cached data"))

	s := New(underlying, backend)
	ctx := context.Background()

	data, err := s.ReadSnapshot(ctx, "main")
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}

	if string(data) != "cached data" {
		t.Errorf("ReadSnapshot() = %q, want %q", data, "cached data")
	}

	stats := s.Stats()
	if stats.Hits != 1 {
		t.Errorf("Stats().Hits = %d, want 1", stats.Hits)
	}
}

func TestStore_CacheMiss(t *testing.T) {
	backend := newFakeBackend()
	underlying := newFakeStore()

	// Put data in underlying store, not cache.
	underlying.data["main"] = []byte("underlying data")

	s := New(underlying, backend)
	ctx := context.Background()

	data, err := s.ReadSnapshot(ctx, "main")
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}

	if string(data) != "underlying data" {
		t.Errorf("ReadSnapshot() = %q, want %q", data, "underlying data")
	}

	// Should have cached the data.
	if _, ok := backend.data["main"]; !ok {
		t.Error("data should be cached after miss")
	}

	stats := s.Stats()
	if stats.Misses != 1 {
		t.Errorf("Stats().Misses = %d, want 1", stats.Misses)
	}
}

func TestStore_NotFound(t *testing.T) {
	backend := newFakeBackend()
	underlying := newFakeStore()

	s := New(underlying, backend)
	ctx := context.Background()

	_, err := s.ReadSnapshot(ctx, "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ReadSnapshot() error = %v, want ErrNotFound", err)
	}
}

func TestStore_WriteRefreshesCache(t *testing.T) {
	backend := newFakeBackend()
	underlying := newFakeStore()

	backend.Set("main", []byte("stale"))

	s := New(underlying, backend)
	ctx := context.Background()

	if err := s.WriteSnapshot(ctx, "main", []byte("fresh")); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	if string(underlying.data["main"]) != "fresh" {
		t.Error("write should reach the underlying store")
	}
	data, _ := s.ReadSnapshot(ctx, "main")
	if string(data) != "fresh" {
		t.Errorf("ReadSnapshot() after write = %q, want %q", data, "fresh")
	}
}

func TestStats_HitRate(t *testing.T) {
	tests := []struct {
		name     string
		hits     int64
		misses   int64
		expected float64
	}{
		{"no requests", 0, 0, 0},
		{"all hits", 10, 0, 100},
		{"all misses", 0, 10, 0},
		{"50% hit rate", 5, 5, 50},
		{"75% hit rate", 3, 1, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Stats{Hits: tt.hits, Misses: tt.misses}
			if got := s.HitRate(); got != tt.expected {
				t.Errorf("HitRate() = %v, want %v", got, tt.expected)
			}
		})
	}
}
