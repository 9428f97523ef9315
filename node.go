package chesshound

import (
	"github.com/notnil/chess"

	"github.com/discochess/chesshound/internal/poskey"
)

// Stats is the aggregate observed at one tree node. Outcome counts are
// stored in absolute terms (white wins, black wins, draws); perspective
// reinterpretation happens at query time from the node's mover color.
// The aggregate is commutative: the values never depend on the order games
// were inserted, and merging two aggregates is plain summation.
type Stats struct {
	Visits      int64
	WhiteWins   int64
	BlackWins   int64
	Draws       int64
	RatingSum   int64
	RatingCount int64
}

// add folds one game observation into the aggregate. moverRating <= 0
// means unknown and is excluded from the rating average rather than
// defaulted.
func (s *Stats) add(result Result, moverRating int) {
	s.Visits++
	switch result {
	case WhiteWon:
		s.WhiteWins++
	case BlackWon:
		s.BlackWins++
	case Draw:
		s.Draws++
	}
	if moverRating > 0 {
		s.RatingSum += int64(moverRating)
		s.RatingCount++
	}
}

// merge combines another aggregate into this one. Associative and
// commutative, so sharded subtree builds can be combined in any order.
func (s *Stats) merge(o Stats) {
	s.Visits += o.Visits
	s.WhiteWins += o.WhiteWins
	s.BlackWins += o.BlackWins
	s.Draws += o.Draws
	s.RatingSum += o.RatingSum
	s.RatingCount += o.RatingCount
}

// node is one position in the move tree. Identity is the move path from
// the anchor, not the position key: transpositions reached by different
// move orders are deliberately distinct nodes (see Tree).
type node struct {
	key      poskey.Key
	mover    chess.Color // side that moved into this node; NoColor at the anchor
	stats    Stats
	children map[string]int32 // SAN -> arena index
}

func (n *node) child(san string) (int32, bool) {
	id, ok := n.children[san]
	return id, ok
}
