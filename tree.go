package chesshound

import (
	"errors"
	"fmt"

	"github.com/notnil/chess"

	"github.com/discochess/chesshound/internal/poskey"
)

// ErrAnchorMismatch indicates an attempt to merge trees rooted at
// different anchor positions.
var ErrAnchorMismatch = errors.New("chesshound: anchor mismatch")

// startingFEN is the normalized key form of the standard starting position.
const startingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"

// Tree is the opening explorer's move tree. It owns an arena of nodes,
// each keyed from its parent by the SAN of the move played; identical
// positions reached through different move orders occupy distinct nodes so
// that every node's statistics reflect how the position was reached.
//
// A Tree grows monotonically under Insert and is not safe for concurrent
// mutation. Once built it is read-only and may be shared freely across
// concurrent readers (see Query).
type Tree struct {
	nodes    []node
	anchor   poskey.Key
	anchored bool // anchor differs from the standard starting position
}

// NewTree creates an empty tree rooted at the standard starting position.
func NewTree() *Tree {
	key, err := poskey.Parse(startingFEN)
	if err != nil {
		// The constant is known-valid.
		panic(err)
	}
	return &Tree{nodes: []node{{key: key}}}
}

// NewAnchoredTree creates an empty tree rooted at an arbitrary position,
// for "explore from here" sub-analysis. Games that never reach the anchor
// position are skipped by Insert.
func NewAnchoredTree(fen string) (*Tree, error) {
	key, err := poskey.Parse(fen)
	if err != nil {
		return nil, fmt.Errorf("parsing anchor: %w", err)
	}
	return &Tree{
		nodes:    []node{{key: key}},
		anchor:   key,
		anchored: key.String() != startingFEN,
	}, nil
}

// Anchor returns the canonical key of the tree's root position.
func (t *Tree) Anchor() poskey.Key {
	return t.nodes[0].key
}

// Len returns the number of nodes in the tree, including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// GameCount returns the number of games inserted into the tree.
func (t *Tree) GameCount() int64 {
	return t.nodes[0].stats.Visits
}

// Insert walks the game's moves from the anchor, creating nodes as needed
// and folding the game's outcome into every node on the path. It reports
// whether the game touched the tree; the only false case is an anchored
// tree whose anchor position the game never reaches. A structurally valid
// Game is never rejected.
//
// The cost is O(plies) map lookups; a game that ends early simply stops
// descending, which is what makes visit counts conserve along paths.
func (t *Tree) Insert(g *Game) bool {
	plies := g.Plies()
	start := 0
	if t.anchored {
		idx := -1
		// Anchor matching is by canonical position key, so a game may
		// arrive at the anchor through any transposition.
		for i, ply := range plies {
			if ply.Key == t.nodes[0].key {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		start = idx + 1
	}

	result := g.Meta().Result
	t.nodes[0].stats.add(result, 0)

	cur := int32(0)
	for _, ply := range plies[start:] {
		mover := ply.Key.SideToMove().Other()
		next, ok := t.nodes[cur].child(ply.SAN)
		if !ok {
			next = t.newNode(ply.Key, mover)
			if t.nodes[cur].children == nil {
				t.nodes[cur].children = make(map[string]int32)
			}
			t.nodes[cur].children[ply.SAN] = next
		}
		cur = next
		t.nodes[cur].stats.add(result, moverRating(g.Meta(), mover))
	}
	return true
}

// InsertAll inserts a batch of already-validated games. skipped counts
// games that never reached an anchored tree's anchor position.
func (t *Tree) InsertAll(games []*Game) (inserted, skipped int) {
	for _, g := range games {
		if t.Insert(g) {
			inserted++
		} else {
			skipped++
		}
	}
	return inserted, skipped
}

// Merge folds another tree built over the same anchor into this one by
// recursively summing same-move children. Merge is associative and
// commutative, so shard subtrees may be combined in any order and the
// result matches a single-pass build. The other tree is left unchanged.
func (t *Tree) Merge(other *Tree) error {
	if other.nodes[0].key != t.nodes[0].key {
		return ErrAnchorMismatch
	}

	type pair struct{ dst, src int32 }
	stack := []pair{{0, 0}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		t.nodes[p.dst].stats.merge(other.nodes[p.src].stats)
		for san, srcChild := range other.nodes[p.src].children {
			dstChild, ok := t.nodes[p.dst].child(san)
			if !ok {
				src := &other.nodes[srcChild]
				dstChild = t.newNode(src.key, src.mover)
				if t.nodes[p.dst].children == nil {
					t.nodes[p.dst].children = make(map[string]int32)
				}
				t.nodes[p.dst].children[san] = dstChild
			}
			stack = append(stack, pair{dstChild, srcChild})
		}
	}
	return nil
}

func (t *Tree) newNode(key poskey.Key, mover chess.Color) int32 {
	t.nodes = append(t.nodes, node{key: key, mover: mover})
	return int32(len(t.nodes) - 1)
}

func moverRating(m Metadata, mover chess.Color) int {
	switch mover {
	case chess.White:
		return m.WhiteRating
	case chess.Black:
		return m.BlackRating
	}
	return 0
}
