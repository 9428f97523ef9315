// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Build metrics.
	MetricGamesInserted = "chesshound_games_inserted_total"
	MetricGamesSkipped  = "chesshound_games_skipped_total"
	MetricGamesFiltered = "chesshound_games_filtered_total"
	MetricTreeNodes     = "chesshound_tree_nodes"
	MetricBuildSeconds  = "chesshound_build_seconds"

	// Query metrics.
	MetricQueries     = "chesshound_queries_total"
	MetricQueryMisses = "chesshound_query_misses_total"

	// Snapshot metrics.
	MetricSnapshotLoads = "chesshound_snapshot_loads_total"
	MetricSnapshotSaves = "chesshound_snapshot_saves_total"
	MetricSnapshotBytes = "chesshound_snapshot_bytes"
	MetricCacheHits     = "chesshound_cache_hits_total"
	MetricCacheMisses   = "chesshound_cache_misses_total"
	MetricCacheSize     = "chesshound_cache_size"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
