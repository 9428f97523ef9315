// Package memoryexplorerfx provides an fx module for an in-memory explorer.
// Useful for testing.
package memoryexplorerfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/chesshound"
	"github.com/discochess/chesshound/internal/stats"
	"github.com/discochess/chesshound/internal/stats/logger"
	"github.com/discochess/chesshound/internal/store/memstore"
)

// Module provides an in-memory explorer for testing.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memoryexplorer",
	fx.Provide(
		newStatsCollector,
		newMemStore,
		newExplorer,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("chesshound.stats"))
}

func newMemStore() *memstore.Store {
	return memstore.New()
}

// Params holds dependencies for creating the explorer.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Store     *memstore.Store
	Lifecycle fx.Lifecycle
}

// Result holds the provided explorer and store.
type Result struct {
	fx.Out

	Explorer *chesshound.Explorer
	Store    *memstore.Store // Exposed for test setup
}

func newExplorer(p Params) (Result, error) {
	ex, err := chesshound.New(
		chesshound.WithStore(p.Store),
		chesshound.WithStats(p.Collector),
		chesshound.WithLogger(p.Logger.Named("chesshound")),
	)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return ex.Close()
		},
	})

	return Result{
		Explorer: ex,
		Store:    p.Store,
	}, nil
}
