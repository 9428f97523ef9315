package chesshound

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	tree := NewTree()
	tree.Insert(mustGame(t, "e4 e5 Nf3", Metadata{Result: WhiteWon, WhiteRating: 1900, BlackRating: 1850}))
	tree.Insert(mustGame(t, "e4 c5", Metadata{Result: BlackWon}))
	tree.Insert(mustGame(t, "d4 d5 c4 e6", Metadata{Result: Draw}))
	tree.Insert(mustGame(t, "", Metadata{Result: NoResult}))

	info := SnapshotInfo{
		Version:   SnapshotVersion,
		Anchor:    tree.Anchor().String(),
		GameCount: tree.GameCount(),
		NodeCount: tree.Len(),
		BuiltAt:   time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC),
		Source:    "test.pgn",
		Filter:    BySpeed(Blitz),
	}

	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, tree, info); err != nil {
		t.Fatalf("EncodeSnapshot() error = %v", err)
	}

	decoded, gotInfo, err := DecodeSnapshot(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}

	if !treesEqual(tree, decoded) {
		t.Error("decoded tree differs from original")
	}
	if gotInfo.GameCount != 4 || gotInfo.NodeCount != tree.Len() {
		t.Errorf("info counts = %d games, %d nodes; want 4, %d", gotInfo.GameCount, gotInfo.NodeCount, tree.Len())
	}
	if gotInfo.Source != "test.pgn" {
		t.Errorf("Source = %q, want test.pgn", gotInfo.Source)
	}
	if gotInfo.Filter == nil || gotInfo.Filter.Op != OpSpeed {
		t.Errorf("Filter = %+v, want speed filter", gotInfo.Filter)
	}
	if !gotInfo.BuiltAt.Equal(info.BuiltAt) {
		t.Errorf("BuiltAt = %v, want %v", gotInfo.BuiltAt, info.BuiltAt)
	}

	// Decoded tree answers queries identically.
	a, err := Query(tree, []string{"e4", "e5", "Nf3"})
	if err != nil {
		t.Fatalf("Query(original) error = %v", err)
	}
	b, err := Query(decoded, []string{"e4", "e5", "Nf3"})
	if err != nil {
		t.Fatalf("Query(decoded) error = %v", err)
	}
	if a.Visits != b.Visits || *a.WinRate != *b.WinRate || *a.AvgMoverRating != *b.AvgMoverRating {
		t.Error("decoded tree answers queries differently")
	}
}

func TestSnapshot_AnchoredRoundTrip(t *testing.T) {
	tree, err := NewAnchoredTree("rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2")
	if err != nil {
		t.Fatalf("NewAnchoredTree() error = %v", err)
	}
	tree.Insert(mustGame(t, "e4 e5 Nf3 Nc6", Metadata{Result: WhiteWon}))

	var buf bytes.Buffer
	info := SnapshotInfo{Version: SnapshotVersion, Anchor: tree.Anchor().String(), GameCount: 1, NodeCount: tree.Len()}
	if err := EncodeSnapshot(&buf, tree, info); err != nil {
		t.Fatalf("EncodeSnapshot() error = %v", err)
	}

	decoded, _, err := DecodeSnapshot(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if !decoded.anchored {
		t.Error("decoded tree lost its anchored flag")
	}
	if decoded.Anchor() != tree.Anchor() {
		t.Errorf("anchor = %v, want %v", decoded.Anchor(), tree.Anchor())
	}

	// Anchored semantics survive: a game missing the anchor is skipped.
	if decoded.Insert(mustGame(t, "d4", Metadata{Result: Draw})) {
		t.Error("decoded anchored tree should skip games missing the anchor")
	}
}

func TestDecodeSnapshot_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "not json at all"},
		{"wrong version", `{"version":99,"nodes":[{"p":-1,"k":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -","v":0}]}`},
		{"no nodes", `{"version":1,"nodes":[]}`},
		{
			"forward parent reference",
			`{"version":1,"nodes":[` +
				`{"p":-1,"k":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -","v":1},` +
				`{"p":2,"m":"e4","k":"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq -","c":"w","v":1}]}`,
		},
		{
			"duplicate child move",
			`{"version":1,"nodes":[` +
				`{"p":-1,"k":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -","v":2},` +
				`{"p":0,"m":"e4","k":"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq -","c":"w","v":1},` +
				`{"p":0,"m":"e4","k":"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq -","c":"w","v":1}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeSnapshot(strings.NewReader(tt.data))
			if !errors.Is(err, ErrBadSnapshot) {
				t.Errorf("DecodeSnapshot() error = %v, want ErrBadSnapshot", err)
			}
		})
	}
}

func TestReadSnapshotInfo(t *testing.T) {
	tree := NewTree()
	tree.Insert(mustGame(t, "e4", Metadata{Result: WhiteWon}))

	var buf bytes.Buffer
	info := SnapshotInfo{
		Version:   SnapshotVersion,
		Anchor:    tree.Anchor().String(),
		GameCount: 1,
		NodeCount: 2,
		Source:    "lichess_db_standard_rated_2026-07.pgn.zst",
	}
	if err := EncodeSnapshot(&buf, tree, info); err != nil {
		t.Fatalf("EncodeSnapshot() error = %v", err)
	}

	got, err := ReadSnapshotInfo(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadSnapshotInfo() error = %v", err)
	}
	if got.GameCount != 1 || got.NodeCount != 2 {
		t.Errorf("info = %+v, want 1 game, 2 nodes", got)
	}
	if got.Source != info.Source {
		t.Errorf("Source = %q, want %q", got.Source, info.Source)
	}
}
