package chesshound

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/discochess/chesshound/internal/codec"
	"github.com/discochess/chesshound/internal/partition"
	"github.com/discochess/chesshound/internal/partition/openingshard"
	"github.com/discochess/chesshound/internal/stats"
	"github.com/discochess/chesshound/internal/store"
	"github.com/discochess/chesshound/internal/store/diskstore"
)

// Option configures an Explorer.
type Option interface {
	apply(*options)
}

// options holds the explorer configuration.
type options struct {
	store    store.Store
	anchor   string
	subject  string
	workers  int
	shards   int
	strategy partition.Strategy
	progress BuildProgressFunc
	stats    stats.Collector
	logger   *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	n := runtime.GOMAXPROCS(0)
	return options{
		workers:  n,
		shards:   n,
		strategy: openingshard.New(),
		stats:    stats.NewNoop(),
		logger:   zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithStore sets the snapshot storage backend to use.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
	})
}

// WithAnchor sets the anchor position as a FEN string. Trees built or
// loaded by the explorer start at this position instead of the standard
// starting position.
func WithAnchor(fen string) Option {
	return optionFunc(func(o *options) {
		o.anchor = fen
	})
}

// WithSubject names the player under analysis. Parsed games are stamped
// with this subject, which color-, rating-, and opponent-based filters
// resolve against. Without a subject those filters match nothing.
func WithSubject(name string) Option {
	return optionFunc(func(o *options) {
		o.subject = name
	})
}

// WithWorkers sets the number of parallel parse workers for builds.
// Default is GOMAXPROCS.
func WithWorkers(n int) Option {
	return optionFunc(func(o *options) {
		o.workers = n
	})
}

// WithShards sets the number of independent subtrees built in parallel
// before merging. Default is GOMAXPROCS.
func WithShards(n int) Option {
	return optionFunc(func(o *options) {
		o.shards = n
	})
}

// WithPartitionStrategy sets the game partitioning strategy for builds.
// If not set, opening-based partitioning is used.
func WithPartitionStrategy(s partition.Strategy) Option {
	return optionFunc(func(o *options) {
		o.strategy = s
	})
}

// WithBuildProgress sets a progress callback invoked during builds.
func WithBuildProgress(fn BuildProgressFunc) Option {
	return optionFunc(func(o *options) {
		o.progress = fn
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithSnapshotDir configures the explorer with a disk-based snapshot
// store under dir, using zstd compression. This is the recommended way
// to create an explorer for local data.
func WithSnapshotDir(dir string) (Option, error) {
	st, err := diskstore.New(dir, codec.NewZstd())
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}
	return optionFunc(func(o *options) {
		o.store = st
	}), nil
}
