// Package openingshard implements first-move-based game partitioning.
//
// Games are assigned by an FNV-1a hash of their first move, so all games
// opening 1.e4 land in the same shard. Shard subtrees then share almost no
// prefixes, which keeps the post-build merge close to a concatenation.
package openingshard

import "github.com/discochess/chesshound/internal/partition"

// Strategy implements first-move hash partitioning.
type Strategy struct{}

// Compile-time check that Strategy implements partition.Strategy.
var _ partition.Strategy = (*Strategy)(nil)

// New creates a new opening-shard strategy.
func New() *Strategy {
	return &Strategy{}
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return "opening"
}

// Shard hashes the game's first move. Games with no moves go to shard 0;
// they only touch the tree root, so their placement is immaterial.
func (s *Strategy) Shard(_ int, firstSAN string, totalShards int) int {
	if firstSAN == "" {
		return 0
	}
	return int(fnv1a32(firstSAN) % uint32(totalShards))
}

// fnv1a32 computes the FNV-1a 32-bit hash of a string.
func fnv1a32(s string) uint32 {
	var h uint32 = 2166136261 // FNV offset basis
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619 // FNV prime
	}
	return h
}
