package chesshound

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/notnil/chess"

	"github.com/discochess/chesshound/internal/partition/roundrobin"
)

const buildTestPGN = `[Event "Rated Blitz game"]
[White "alice"]
[Black "bob"]
[Result "1-0"]
[WhiteElo "1900"]
[BlackElo "1850"]
[TimeControl "300+3"]

1. e4 e5 2. Nf3 1-0

[Event "Rated Blitz game"]
[White "bob"]
[Black "alice"]
[Result "1/2-1/2"]
[TimeControl "300+3"]

1. e4 e5 1/2-1/2

[Event "Rated Bullet game"]
[White "alice"]
[Black "carol"]
[Result "0-1"]
[TimeControl "60+0"]

1. e4 c5 0-1

[Event "Rated Blitz game"]
[White "carol"]
[Black "bob"]
[Result "1-0"]
[TimeControl "300+0"]

1. d4 d5 1-0
`

const malformedPGN = `[Event "Broken"]
[Result "1-0"]

1. e4 Ke7 1-0
`

func TestBuildTree(t *testing.T) {
	tree, report, err := BuildTree(context.Background(), strings.NewReader(buildTestPGN), nil)
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}

	if report.GamesRead != 4 || report.Parsed != 4 || report.Inserted != 4 {
		t.Errorf("report = %+v, want 4 read, 4 parsed, 4 inserted", report)
	}
	if report.Skipped != 0 || report.Filtered != 0 {
		t.Errorf("report = %+v, want nothing skipped or filtered", report)
	}
	if tree.GameCount() != 4 {
		t.Errorf("GameCount() = %d, want 4", tree.GameCount())
	}

	e4e5 := statsAt(t, tree, "e4", "e5")
	if e4e5.Visits != 2 || e4e5.WhiteWins != 1 || e4e5.Draws != 1 {
		t.Errorf("e4 e5 stats = %+v, want 2 visits, 1 white win, 1 draw", e4e5)
	}
}

func TestBuildTree_MatchesSequentialInsert(t *testing.T) {
	for _, shards := range []int{1, 2, 7} {
		tree, _, err := BuildTree(context.Background(), strings.NewReader(buildTestPGN), nil,
			WithWorkers(3), WithShards(shards))
		if err != nil {
			t.Fatalf("BuildTree(shards=%d) error = %v", shards, err)
		}

		want := NewTree()
		for _, text := range strings.Split(buildTestPGN, "\n\n[") {
			if !strings.HasPrefix(text, "[") {
				text = "[" + text
			}
			g, err := ParsePGN(text)
			if err != nil {
				t.Fatalf("ParsePGN() error = %v", err)
			}
			want.Insert(g)
		}

		if !treesEqual(want, tree) {
			t.Errorf("parallel build with %d shards differs from sequential insert", shards)
		}
	}
}

func TestBuildTree_SkipsMalformed(t *testing.T) {
	input := buildTestPGN + "\n" + malformedPGN

	tree, report, err := BuildTree(context.Background(), strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}

	if report.GamesRead != 5 {
		t.Errorf("GamesRead = %d, want 5", report.GamesRead)
	}
	if report.Skipped != 1 || report.SkipReasons[SkipMalformed] != 1 {
		t.Errorf("report = %+v, want 1 malformed skip", report)
	}
	if tree.GameCount() != 4 {
		t.Errorf("GameCount() = %d, want 4 (malformed game excluded)", tree.GameCount())
	}
}

func TestBuildTree_Filter(t *testing.T) {
	tree, report, err := BuildTree(context.Background(),
		strings.NewReader(buildTestPGN), BySpeed(Blitz))
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}

	// The bullet game is filtered out.
	if report.Filtered != 1 || report.Inserted != 3 {
		t.Errorf("report = %+v, want 1 filtered, 3 inserted", report)
	}
	if tree.GameCount() != 3 {
		t.Errorf("GameCount() = %d, want 3", tree.GameCount())
	}
	if _, ok := tree.nodes[0].child("e4"); !ok {
		t.Fatal("blitz e4 games should remain")
	}
}

func TestBuildTree_SubjectFilter(t *testing.T) {
	// Color filters resolve against the configured subject.
	tree, report, err := BuildTree(context.Background(),
		strings.NewReader(buildTestPGN), ByColor(chess.White),
		WithSubject("alice"))
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}

	// Alice played white in games 1 and 3.
	if report.Inserted != 2 {
		t.Errorf("Inserted = %d, want 2", report.Inserted)
	}
	if tree.GameCount() != 2 {
		t.Errorf("GameCount() = %d, want 2", tree.GameCount())
	}

	// Without a subject the same filter matches nothing.
	_, report, err = BuildTree(context.Background(),
		strings.NewReader(buildTestPGN), ByColor(chess.White))
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}
	if report.Inserted != 0 || report.Filtered != 4 {
		t.Errorf("report = %+v, want everything filtered without a subject", report)
	}
}

func TestBuildTree_InvalidFilter(t *testing.T) {
	_, _, err := BuildTree(context.Background(),
		strings.NewReader(buildTestPGN), ByRatingBand(2000, 1000))
	if err == nil {
		t.Fatal("BuildTree() should reject an invalid filter")
	}
}

func TestBuildTree_Anchored(t *testing.T) {
	tree, report, err := BuildTree(context.Background(),
		strings.NewReader(buildTestPGN), nil,
		WithAnchor("rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2"),
		WithShards(3))
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}

	// Two games reach the 1.e4 e5 position; the Sicilian and the d4 game
	// are skipped as unreachable.
	if report.Inserted != 2 {
		t.Errorf("Inserted = %d, want 2", report.Inserted)
	}
	if report.SkipReasons[SkipAnchorUnreachable] != 2 {
		t.Errorf("SkipReasons = %v, want 2 anchor-unreachable", report.SkipReasons)
	}
	if tree.GameCount() != 2 {
		t.Errorf("GameCount() = %d, want 2", tree.GameCount())
	}
}

func TestBuildTree_RoundRobinPartition(t *testing.T) {
	tree, _, err := BuildTree(context.Background(),
		strings.NewReader(buildTestPGN), nil,
		WithShards(3), WithPartitionStrategy(roundrobin.New()))
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}
	if tree.GameCount() != 4 {
		t.Errorf("GameCount() = %d, want 4", tree.GameCount())
	}
}

func TestBuildTree_Progress(t *testing.T) {
	var calls int
	_, _, err := BuildTree(context.Background(),
		strings.NewReader(buildTestPGN), nil,
		WithBuildProgress(func(p BuildProgress) { calls++ }))
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}
	// The final report always fires once.
	if calls == 0 {
		t.Error("progress callback never invoked")
	}
}

func TestBuildTree_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := BuildTree(ctx, strings.NewReader(buildTestPGN), nil)
	if err == nil {
		// A tiny input can complete before the cancellation is observed;
		// only a returned error must be the context's.
		return
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("BuildTree() error = %v, want context.Canceled", err)
	}
}
