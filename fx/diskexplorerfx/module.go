// Package diskexplorerfx provides an fx module for a disk-backed explorer.
package diskexplorerfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/chesshound"
	"github.com/discochess/chesshound/internal/codec"
	"github.com/discochess/chesshound/internal/stats"
	"github.com/discochess/chesshound/internal/stats/logger"
	"github.com/discochess/chesshound/internal/store/cachedstore"
	"github.com/discochess/chesshound/internal/store/cachedstore/cachestrategy/lru"
	"github.com/discochess/chesshound/internal/store/cachedstore/memory"
	"github.com/discochess/chesshound/internal/store/diskstore"
)

// Config holds configuration for the disk-backed explorer.
type Config struct {
	// DataDir is the directory containing tree snapshots.
	DataDir string

	// CacheSize is the number of snapshots to cache in memory.
	// Default is 16.
	CacheSize int

	// Anchor is an optional anchor position FEN. Empty means the
	// standard starting position.
	Anchor string
}

// Module provides a disk-backed explorer.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("diskexplorer",
	fx.Provide(
		newStatsCollector,
		newExplorer,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("chesshound.stats"))
}

// Params holds dependencies for creating the explorer.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided explorer.
type Result struct {
	fx.Out

	Explorer *chesshound.Explorer
}

func newExplorer(p Params) (Result, error) {
	cacheSize := p.Config.CacheSize
	if cacheSize <= 0 {
		cacheSize = 16
	}

	baseStore, err := diskstore.New(p.Config.DataDir, codec.NewZstd())
	if err != nil {
		return Result{}, err
	}

	lruStrategy, err := lru.New(cacheSize)
	if err != nil {
		return Result{}, err
	}

	st := cachedstore.New(baseStore, memory.New(lruStrategy, p.Collector))

	opts := []chesshound.Option{
		chesshound.WithStore(st),
		chesshound.WithStats(p.Collector),
		chesshound.WithLogger(p.Logger.Named("chesshound")),
	}
	if p.Config.Anchor != "" {
		opts = append(opts, chesshound.WithAnchor(p.Config.Anchor))
	}

	ex, err := chesshound.New(opts...)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return ex.Close()
		},
	})

	return Result{Explorer: ex}, nil
}
