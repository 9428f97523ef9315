// Package chesshound builds and queries opening explorer trees from chess
// game collections.
//
// A tree is keyed by move path from the anchor, with every node carrying
// the canonical key of its position, so statistics always reflect how a
// position was reached. Example usage:
//
//	dir, err := chesshound.WithSnapshotDir("/path/to/data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ex, err := chesshound.New(dir)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ex.Close()
//
//	report, err := ex.BuildFromPGN(ctx, pgnFile, chesshound.BySpeed(chesshound.Blitz))
//	view, err := ex.Query([]string{"e4", "c5"})
package chesshound

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/chesshound/internal/stats"
	"github.com/discochess/chesshound/internal/store"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrClosed indicates the explorer has been closed.
	ErrClosed = errors.New("chesshound: explorer closed")

	// ErrNoStore indicates an operation needed a snapshot store but none
	// was configured.
	ErrNoStore = errors.New("chesshound: no store configured")

	// ErrNoTree indicates no tree has been built or loaded yet.
	ErrNoTree = errors.New("chesshound: no tree loaded")

	// ErrSnapshotNotFound indicates the named snapshot does not exist.
	ErrSnapshotNotFound = errors.New("chesshound: snapshot not found")
)

// Explorer provides access to an opening tree: building it from PGN,
// querying it, and persisting it through a snapshot store.
// An Explorer is safe for concurrent use by multiple goroutines.
type Explorer struct {
	cfg   options
	stats stats.Collector

	mu         sync.RWMutex
	tree       *Tree
	lastFilter *Filter // Filter used for the last build, for provenance.
	lastSource string
	closed     bool
}

// New creates a new Explorer with the given options.
// If no options are provided, sensible defaults are used; a store is only
// required for snapshot operations.
func New(opts ...Option) (*Explorer, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.anchor != "" {
		// Fail fast on a bad anchor instead of at first build.
		if _, err := NewAnchoredTree(cfg.anchor); err != nil {
			return nil, err
		}
	}

	e := &Explorer{
		cfg:   cfg,
		stats: cfg.stats,
	}

	cfg.logger.Debug("explorer initialized",
		zap.Int("workers", cfg.workers),
		zap.Int("shards", cfg.shards),
		zap.String("partition", cfg.strategy.Name()),
	)

	return e, nil
}

// BuildFromPGN builds the explorer's tree from a PGN stream, replacing any
// previously built or loaded tree. A nil filter admits every game.
func (e *Explorer) BuildFromPGN(ctx context.Context, r io.Reader, filter *Filter) (*Report, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	tree, report, err := buildTree(ctx, r, filter, e.cfg)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.tree = tree
	e.lastFilter = filter
	e.mu.Unlock()

	return report, nil
}

// SetSource records where the tree's games came from, for snapshot
// provenance. Typically a file path or URL.
func (e *Explorer) SetSource(source string) {
	e.mu.Lock()
	e.lastSource = source
	e.mu.Unlock()
}

// Tree returns the current tree, or an error if none has been built or
// loaded. The tree must not be mutated while the explorer is in use.
func (e *Explorer) Tree() (*Tree, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, ErrClosed
	}
	if e.tree == nil {
		return nil, ErrNoTree
	}
	return e.tree, nil
}

// Query walks the given SAN move path from the anchor and returns the view
// of the reached node. Returns a *PathError wrapping ErrPathNotFound when
// the path leaves the tree.
func (e *Explorer) Query(path []string, opts ...QueryOption) (*NodeView, error) {
	e.mu.RLock()
	tree, closed := e.tree, e.closed
	e.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if tree == nil {
		return nil, ErrNoTree
	}

	e.stats.IncCounter(stats.MetricQueries, 1)

	view, err := Query(tree, path, opts...)
	if err != nil {
		if errors.Is(err, ErrPathNotFound) {
			e.stats.IncCounter(stats.MetricQueryMisses, 1)
		}
		return nil, err
	}
	return view, nil
}

// SaveSnapshot encodes the current tree and writes it to the store under
// the given name.
func (e *Explorer) SaveSnapshot(ctx context.Context, name string) error {
	e.mu.RLock()
	tree, closed := e.tree, e.closed
	filter, source := e.lastFilter, e.lastSource
	e.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if tree == nil {
		return ErrNoTree
	}
	if e.cfg.store == nil {
		return ErrNoStore
	}

	info := SnapshotInfo{
		Version:   SnapshotVersion,
		Anchor:    tree.Anchor().String(),
		GameCount: tree.GameCount(),
		NodeCount: tree.Len(),
		BuiltAt:   time.Now().UTC(),
		Source:    source,
		Filter:    filter,
	}

	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, tree, info); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := e.cfg.store.WriteSnapshot(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("writing snapshot %q: %w", name, err)
	}

	e.stats.IncCounter(stats.MetricSnapshotSaves, 1)
	e.stats.SetGauge(stats.MetricSnapshotBytes, int64(buf.Len()))
	e.cfg.logger.Info("snapshot saved",
		zap.String("name", name),
		zap.Int("nodes", info.NodeCount),
		zap.Int64("games", info.GameCount),
		zap.Int("bytes", buf.Len()),
	)
	return nil
}

// LoadSnapshot reads the named snapshot from the store and replaces the
// current tree with it.
func (e *Explorer) LoadSnapshot(ctx context.Context, name string) (*SnapshotInfo, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if e.cfg.store == nil {
		return nil, ErrNoStore
	}

	data, err := e.cfg.store.ReadSnapshot(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return nil, fmt.Errorf("reading snapshot %q: %w", name, err)
	}

	tree, info, err := DecodeSnapshot(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot %q: %w", name, err)
	}

	e.mu.Lock()
	e.tree = tree
	e.lastFilter = info.Filter
	e.lastSource = info.Source
	e.mu.Unlock()

	e.stats.IncCounter(stats.MetricSnapshotLoads, 1)
	e.cfg.logger.Info("snapshot loaded",
		zap.String("name", name),
		zap.Int("nodes", info.NodeCount),
		zap.Int64("games", info.GameCount),
	)
	return info, nil
}

// SnapshotInfo reads only the header of the named snapshot, without
// decoding the node list or replacing the current tree.
func (e *Explorer) SnapshotInfo(ctx context.Context, name string) (*SnapshotInfo, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if e.cfg.store == nil {
		return nil, ErrNoStore
	}

	data, err := e.cfg.store.ReadSnapshot(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return nil, fmt.Errorf("reading snapshot %q: %w", name, err)
	}

	return ReadSnapshotInfo(bytes.NewReader(data))
}

// Close releases all resources associated with the explorer.
// After Close, the explorer should not be used.
func (e *Explorer) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.closed = true
	e.tree = nil
	e.mu.Unlock()

	if e.cfg.store != nil {
		if err := e.cfg.store.Close(); err != nil {
			return fmt.Errorf("closing store: %w", err)
		}
	}
	return nil
}
