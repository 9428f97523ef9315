// Package partition defines the strategy interface for distributing games
// across independent shard subtrees during a parallel build.
package partition

// Strategy assigns each game to one of totalShards build shards. Shards
// are built with no shared state and merged afterwards, so any assignment
// is correct; strategies differ only in balance and in how much the shard
// subtrees overlap before the merge.
type Strategy interface {
	// Name returns a human-readable name for this strategy.
	Name() string

	// Shard returns the shard for a game, in the range [0, totalShards).
	// index is the game's position in the input sequence and firstSAN is
	// its first move in SAN, empty for games with no moves.
	Shard(index int, firstSAN string, totalShards int) int
}
