package chesshound

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/notnil/chess"

	"github.com/discochess/chesshound/internal/poskey"
)

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// ErrBadSnapshot indicates snapshot data that cannot be decoded.
var ErrBadSnapshot = errors.New("chesshound: bad snapshot")

// SnapshotInfo describes a serialized tree. Encode fills the tree-derived
// fields; BuiltAt, Source, and Filter are supplied by the builder.
type SnapshotInfo struct {
	Version   int       `json:"version"`
	Anchor    string    `json:"anchor"`
	GameCount int64     `json:"game_count"`
	NodeCount int       `json:"node_count"`
	BuiltAt   time.Time `json:"built_at,omitempty"`
	Source    string    `json:"source,omitempty"`
	Filter    *Filter   `json:"filter,omitempty"`
}

// snapshotNode is one arena entry. Node identity is the move path from the
// anchor: entries appear in arena order, each naming its parent index and
// the move from the parent, which round-trips the tree shape exactly.
type snapshotNode struct {
	Parent int32  `json:"p"`
	Move   string `json:"m,omitempty"`
	Key    string `json:"k"`
	Mover  string `json:"c,omitempty"`

	Visits      int64 `json:"v"`
	WhiteWins   int64 `json:"ww,omitempty"`
	BlackWins   int64 `json:"bw,omitempty"`
	Draws       int64 `json:"d,omitempty"`
	RatingSum   int64 `json:"rs,omitempty"`
	RatingCount int64 `json:"rc,omitempty"`
}

type snapshotFile struct {
	SnapshotInfo
	Anchored bool           `json:"anchored,omitempty"`
	Nodes    []snapshotNode `json:"nodes"`
}

// EncodeSnapshot writes the tree to w in the versioned snapshot format.
// Every node field round-trips losslessly through DecodeSnapshot.
func EncodeSnapshot(w io.Writer, t *Tree, info SnapshotInfo) error {
	file := snapshotFile{
		SnapshotInfo: info,
		Anchored:     t.anchored,
		Nodes:        make([]snapshotNode, len(t.nodes)),
	}
	file.Version = SnapshotVersion
	file.Anchor = t.nodes[0].key.String()
	file.GameCount = t.GameCount()
	file.NodeCount = t.Len()

	for i := range t.nodes {
		n := &t.nodes[i]
		file.Nodes[i] = snapshotNode{
			Parent:      -1,
			Key:         n.key.String(),
			Mover:       colorTag(n.mover),
			Visits:      n.stats.Visits,
			WhiteWins:   n.stats.WhiteWins,
			BlackWins:   n.stats.BlackWins,
			Draws:       n.stats.Draws,
			RatingSum:   n.stats.RatingSum,
			RatingCount: n.stats.RatingCount,
		}
	}
	for i := range t.nodes {
		for san, child := range t.nodes[i].children {
			file.Nodes[child].Parent = int32(i)
			file.Nodes[child].Move = san
		}
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(&file); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a snapshot produced by EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (*Tree, *SnapshotInfo, error) {
	var file snapshotFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if file.Version != SnapshotVersion {
		return nil, nil, fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, file.Version)
	}
	if len(file.Nodes) == 0 {
		return nil, nil, fmt.Errorf("%w: no nodes", ErrBadSnapshot)
	}
	if file.Nodes[0].Parent != -1 {
		return nil, nil, fmt.Errorf("%w: first node is not the root", ErrBadSnapshot)
	}

	t := &Tree{
		nodes:    make([]node, len(file.Nodes)),
		anchored: file.Anchored,
	}
	for i, sn := range file.Nodes {
		t.nodes[i] = node{
			// Keys were canonicalized before encoding.
			key:   poskey.FromCanonical(sn.Key),
			mover: colorFromTag(sn.Mover),
			stats: Stats{
				Visits:      sn.Visits,
				WhiteWins:   sn.WhiteWins,
				BlackWins:   sn.BlackWins,
				Draws:       sn.Draws,
				RatingSum:   sn.RatingSum,
				RatingCount: sn.RatingCount,
			},
		}
		if i == 0 {
			continue
		}
		if sn.Parent < 0 || int(sn.Parent) >= i || sn.Move == "" {
			return nil, nil, fmt.Errorf("%w: node %d has invalid parent link", ErrBadSnapshot, i)
		}
		parent := &t.nodes[sn.Parent]
		if parent.children == nil {
			parent.children = make(map[string]int32)
		}
		if _, dup := parent.children[sn.Move]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate child %q under node %d", ErrBadSnapshot, sn.Move, sn.Parent)
		}
		parent.children[sn.Move] = int32(i)
	}
	t.anchor = t.nodes[0].key

	info := file.SnapshotInfo
	return t, &info, nil
}

// ReadSnapshotInfo decodes only the descriptive header of a snapshot.
func ReadSnapshotInfo(r io.Reader) (*SnapshotInfo, error) {
	var file struct {
		SnapshotInfo
		Nodes []json.RawMessage `json:"nodes"`
	}
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if file.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, file.Version)
	}
	info := file.SnapshotInfo
	return &info, nil
}

func colorTag(c chess.Color) string {
	switch c {
	case chess.White:
		return "w"
	case chess.Black:
		return "b"
	}
	return ""
}

func colorFromTag(tag string) chess.Color {
	switch tag {
	case "w":
		return chess.White
	case "b":
		return chess.Black
	}
	return chess.NoColor
}
