package chesshound

import (
	"errors"
	"fmt"
	"sort"

	"github.com/notnil/chess"

	"github.com/discochess/chesshound/internal/poskey"
)

// ErrPathNotFound indicates a query path was never observed in any
// inserted game. This is an expected outcome of exploration, not a fault.
var ErrPathNotFound = errors.New("chesshound: path not found")

// PathError reports how much of a query path matched before the walk fell
// off the tree. It satisfies errors.Is(err, ErrPathNotFound).
type PathError struct {
	// MatchedPlies is the length of the longest prefix of the requested
	// path that exists in the tree.
	MatchedPlies int
	// Move is the first unmatched move.
	Move string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("chesshound: path not found: no games continue %q after %d matched plies", e.Move, e.MatchedPlies)
}

// Unwrap makes the error match ErrPathNotFound.
func (e *PathError) Unwrap() error {
	return ErrPathNotFound
}

// ChildStat summarizes one continuation from a node.
type ChildStat struct {
	// Move is the continuation in SAN.
	Move string
	// Visits is the number of games that played this continuation.
	Visits int64
	// WinRate is the win rate for the player making this move, nil when
	// the child was never visited.
	WinRate *float64
}

// NodeView is the query result for one node: the aggregate at the node
// plus its continuations, ranked by the requested ordering.
//
// Rate fields are nil rather than NaN for a node with no visits.
type NodeView struct {
	// Key is the canonical position key of the node.
	Key poskey.Key
	// Mover is the side that moved into this node; chess.NoColor at the
	// tree anchor.
	Mover chess.Color
	// Visits is the number of games that reached the node.
	Visits int64

	// Wins and Losses count outcomes from the mover's perspective and
	// stay zero at the anchor. Draws counts drawn games.
	Wins   int64
	Losses int64
	Draws  int64

	// Absolute outcome rates.
	WhiteWinRate *float64
	BlackWinRate *float64
	DrawRate     *float64

	// WinRate and LossRate reinterpret the outcome from the mover's
	// perspective; nil at the anchor, where no one has moved.
	WinRate  *float64
	LossRate *float64

	// AvgMoverRating is the average rating of the players who moved into
	// the node, over games where that rating was known. Nil when no
	// rating was observed.
	AvgMoverRating *float64

	// EndedHere is the number of games whose final position is this node.
	EndedHere int64

	// Children lists observed continuations in the requested order.
	Children []ChildStat
}

// Ordering selects how a NodeView's children are ranked.
type Ordering int

const (
	// OrderByVisits ranks children by descending visit count, ties broken
	// by lexicographic SAN for determinism. This is the default.
	OrderByVisits Ordering = iota
	// OrderByMove ranks children by lexicographic SAN.
	OrderByMove
	// OrderByWinRate ranks children by descending mover win rate, ties
	// broken by descending visits, then SAN.
	OrderByWinRate
)

// QueryOption configures a Query call.
type QueryOption func(*queryConfig)

type queryConfig struct {
	ordering Ordering
}

// WithOrdering sets the child ranking used in the returned NodeView.
func WithOrdering(o Ordering) QueryOption {
	return func(c *queryConfig) { c.ordering = o }
}

// Query walks the tree from its anchor along the given SAN moves and
// returns a view of the node reached. An empty path returns the anchor
// node. A miss returns a *PathError naming the matched prefix length;
// Query is stateless and safe for any number of concurrent callers once
// the tree is built.
func Query(t *Tree, path []string, opts ...QueryOption) (*NodeView, error) {
	cfg := queryConfig{ordering: OrderByVisits}
	for _, opt := range opts {
		opt(&cfg)
	}

	cur := int32(0)
	for i, san := range path {
		next, ok := t.nodes[cur].child(san)
		if !ok {
			return nil, &PathError{MatchedPlies: i, Move: san}
		}
		cur = next
	}

	return t.viewOf(cur, cfg.ordering), nil
}

func (t *Tree) viewOf(id int32, ordering Ordering) *NodeView {
	n := &t.nodes[id]
	view := &NodeView{
		Key:    n.key,
		Mover:  n.mover,
		Visits: n.stats.Visits,
		Draws:  n.stats.Draws,
	}
	if wins, losses, ok := moverCounts(n.stats, n.mover); ok {
		view.Wins, view.Losses = wins, losses
	}

	if n.stats.Visits > 0 {
		total := float64(n.stats.Visits)
		view.WhiteWinRate = ratePtr(float64(n.stats.WhiteWins) / total)
		view.BlackWinRate = ratePtr(float64(n.stats.BlackWins) / total)
		view.DrawRate = ratePtr(float64(n.stats.Draws) / total)

		if wins, losses, ok := moverCounts(n.stats, n.mover); ok {
			view.WinRate = ratePtr(float64(wins) / total)
			view.LossRate = ratePtr(float64(losses) / total)
		}
	}
	if n.stats.RatingCount > 0 {
		view.AvgMoverRating = ratePtr(float64(n.stats.RatingSum) / float64(n.stats.RatingCount))
	}

	var childVisits int64
	view.Children = make([]ChildStat, 0, len(n.children))
	for san, childID := range n.children {
		child := &t.nodes[childID]
		cs := ChildStat{Move: san, Visits: child.stats.Visits}
		childVisits += child.stats.Visits
		if wins, _, ok := moverCounts(child.stats, child.mover); ok && child.stats.Visits > 0 {
			cs.WinRate = ratePtr(float64(wins) / float64(child.stats.Visits))
		}
		view.Children = append(view.Children, cs)
	}
	view.EndedHere = n.stats.Visits - childVisits

	sortChildren(view.Children, ordering)
	return view
}

func sortChildren(children []ChildStat, ordering Ordering) {
	switch ordering {
	case OrderByMove:
		sort.Slice(children, func(i, j int) bool {
			return children[i].Move < children[j].Move
		})
	case OrderByWinRate:
		sort.Slice(children, func(i, j int) bool {
			ri, rj := rateOrZero(children[i].WinRate), rateOrZero(children[j].WinRate)
			if ri != rj {
				return ri > rj
			}
			if children[i].Visits != children[j].Visits {
				return children[i].Visits > children[j].Visits
			}
			return children[i].Move < children[j].Move
		})
	default:
		sort.Slice(children, func(i, j int) bool {
			if children[i].Visits != children[j].Visits {
				return children[i].Visits > children[j].Visits
			}
			return children[i].Move < children[j].Move
		})
	}
}

// moverCounts reinterprets absolute outcome counts from the mover's
// perspective. ok is false at the anchor node.
func moverCounts(s Stats, mover chess.Color) (wins, losses int64, ok bool) {
	switch mover {
	case chess.White:
		return s.WhiteWins, s.BlackWins, true
	case chess.Black:
		return s.BlackWins, s.WhiteWins, true
	}
	return 0, 0, false
}

func ratePtr(v float64) *float64 {
	return &v
}

func rateOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
