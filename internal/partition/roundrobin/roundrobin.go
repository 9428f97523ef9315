// Package roundrobin implements uniform round-robin game partitioning.
//
// It balances shard sizes exactly but gives no locality: every shard tends
// to contain every popular opening, so shard subtrees overlap heavily at
// merge time. Used primarily as a baseline against opening-based sharding.
package roundrobin

import "github.com/discochess/chesshound/internal/partition"

// Strategy implements round-robin partitioning.
type Strategy struct{}

// Compile-time check that Strategy implements partition.Strategy.
var _ partition.Strategy = (*Strategy)(nil)

// New creates a new round-robin strategy.
func New() *Strategy {
	return &Strategy{}
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return "roundrobin"
}

// Shard assigns games to shards cyclically by input position.
func (s *Strategy) Shard(index int, _ string, totalShards int) int {
	return index % totalShards
}
