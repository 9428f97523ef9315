package chesshound

import (
	"testing"
)

var benchLines = []struct {
	moves  string
	result Result
}{
	{"e4 e5 Nf3 Nc6 Bb5 a6 Ba4 Nf6", WhiteWon},
	{"e4 c5 Nf3 d6 d4 cxd4 Nxd4 Nf6", BlackWon},
	{"d4 Nf6 c4 e6 Nc3 Bb4", Draw},
	{"d4 d5 c4 c6 Nf3 Nf6", WhiteWon},
	{"Nf3 d5 g3 g6 Bg2 Bg7", Draw},
	{"e4 e6 d4 d5 Nc3 Nf6", BlackWon},
}

func benchTree(b *testing.B) *Tree {
	b.Helper()
	games := make([]*Game, 0, len(benchLines))
	for _, line := range benchLines {
		g, err := ParseGame(line.moves, Metadata{Result: line.result, WhiteRating: 2000, BlackRating: 2000})
		if err != nil {
			b.Fatalf("ParseGame() error = %v", err)
		}
		games = append(games, g)
	}

	tree := NewTree()
	for i := 0; i < 200; i++ {
		for _, g := range games {
			tree.Insert(g)
		}
	}
	return tree
}

func BenchmarkQuery_Shallow(b *testing.B) {
	tree := benchTree(b)
	path := []string{"e4"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Query(tree, path); err != nil {
			b.Fatalf("query error: %v", err)
		}
	}
}

func BenchmarkQuery_Deep(b *testing.B) {
	tree := benchTree(b)
	path := []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6", "Ba4", "Nf6"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Query(tree, path); err != nil {
			b.Fatalf("query error: %v", err)
		}
	}
}

func BenchmarkInsert(b *testing.B) {
	g, err := ParseGame(benchLines[0].moves, Metadata{Result: WhiteWon})
	if err != nil {
		b.Fatalf("ParseGame() error = %v", err)
	}

	tree := NewTree()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(g)
	}
}

func BenchmarkParseGame(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := ParseGame(benchLines[0].moves, Metadata{}); err != nil {
			b.Fatalf("ParseGame() error = %v", err)
		}
	}
}
