package chesshound

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/discochess/chesshound/internal/pgn"
	"github.com/discochess/chesshound/internal/stats"
)

// Skip reasons reported in Report.SkipReasons.
const (
	SkipMalformed         = "malformed"
	SkipAnchorUnreachable = "anchor-unreachable"
)

// Report summarizes a build run.
type Report struct {
	GamesRead int64 // Games split out of the input stream.
	Parsed    int64 // Games that parsed cleanly.
	Skipped   int64 // Games dropped; see SkipReasons for a breakdown.
	Filtered  int64 // Games rejected by the sampling filter.
	Inserted  int64 // Games inserted into the tree.

	SkipReasons map[string]int64
	Elapsed     time.Duration
}

// BuildProgress is a point-in-time view of a running build.
type BuildProgress struct {
	GamesRead int64
	Inserted  int64
}

// BuildProgressFunc is called periodically with progress updates.
// It may be called from multiple goroutines, but never concurrently.
type BuildProgressFunc func(BuildProgress)

// progressInterval is how many insertions pass between progress callbacks.
const progressInterval = 1000

// BuildTree reads a PGN stream and builds a move tree from it.
//
// Games are split out of the stream, parsed and filtered by a pool of
// workers, partitioned into independent subtrees built in parallel, and
// merged into a single tree at the end. Malformed games are skipped and
// counted, never fatal. A nil filter admits every game.
func BuildTree(ctx context.Context, r io.Reader, filter *Filter, opts ...Option) (*Tree, *Report, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return buildTree(ctx, r, filter, cfg)
}

func buildTree(ctx context.Context, r io.Reader, filter *Filter, cfg options) (*Tree, *Report, error) {
	start := time.Now()

	if cfg.workers < 1 {
		cfg.workers = 1
	}
	if cfg.shards < 1 {
		cfg.shards = 1
	}
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, nil, err
		}
	}

	trees := make([]*Tree, cfg.shards)
	for i := range trees {
		t, err := newAnchorTree(cfg.anchor)
		if err != nil {
			return nil, nil, err
		}
		trees[i] = t
	}

	var (
		gamesRead atomic.Int64
		parsed    atomic.Int64
		filtered  atomic.Int64
		inserted  atomic.Int64
		seq       atomic.Int64

		mu          sync.Mutex
		skipReasons = make(map[string]int64)
	)
	skip := func(reason string) {
		mu.Lock()
		skipReasons[reason]++
		mu.Unlock()
	}
	report := func() {
		if cfg.progress == nil {
			return
		}
		mu.Lock()
		cfg.progress(BuildProgress{
			GamesRead: gamesRead.Load(),
			Inserted:  inserted.Load(),
		})
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	// Producer: split the stream into raw game texts.
	texts := make(chan string, 4*cfg.workers)
	g.Go(func() error {
		defer close(texts)
		return pgn.Split(r, func(text string) error {
			gamesRead.Add(1)
			select {
			case texts <- text:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	// Parse workers: parse, filter, partition.
	shardChans := make([]chan *Game, cfg.shards)
	for i := range shardChans {
		shardChans[i] = make(chan *Game, 64)
	}
	var parsers sync.WaitGroup
	for w := 0; w < cfg.workers; w++ {
		parsers.Add(1)
		g.Go(func() error {
			defer parsers.Done()
			for text := range texts {
				game, err := ParsePGN(text)
				if err != nil {
					skip(SkipMalformed)
					continue
				}
				if cfg.subject != "" {
					game.meta.Subject = cfg.subject
				}
				parsed.Add(1)

				if !filter.Matches(game) {
					filtered.Add(1)
					continue
				}

				first := ""
				if plies := game.Plies(); len(plies) > 0 {
					first = plies[0].SAN
				}
				idx := int(seq.Add(1) - 1)
				sh := cfg.strategy.Shard(idx, first, cfg.shards)

				select {
				case shardChans[sh] <- game:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		parsers.Wait()
		for _, ch := range shardChans {
			close(ch)
		}
		return nil
	})

	// Shard workers: each owns one subtree.
	for i := range trees {
		g.Go(func() error {
			for game := range shardChans[i] {
				if !trees[i].Insert(game) {
					skip(SkipAnchorUnreachable)
					continue
				}
				if n := inserted.Add(1); n%progressInterval == 0 {
					report()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	// Merge the shard subtrees into the first.
	tree := trees[0]
	for _, t := range trees[1:] {
		if err := tree.Merge(t); err != nil {
			return nil, nil, fmt.Errorf("merging shard trees: %w", err)
		}
	}

	var skipped int64
	mu.Lock()
	for _, n := range skipReasons {
		skipped += n
	}
	mu.Unlock()

	rep := &Report{
		GamesRead:   gamesRead.Load(),
		Parsed:      parsed.Load(),
		Skipped:     skipped,
		Filtered:    filtered.Load(),
		Inserted:    inserted.Load(),
		SkipReasons: skipReasons,
		Elapsed:     time.Since(start),
	}

	cfg.stats.IncCounter(stats.MetricGamesInserted, rep.Inserted)
	cfg.stats.IncCounter(stats.MetricGamesSkipped, rep.Skipped)
	cfg.stats.IncCounter(stats.MetricGamesFiltered, rep.Filtered)
	cfg.stats.SetGauge(stats.MetricTreeNodes, int64(tree.Len()))
	cfg.stats.ObserveHistogram(stats.MetricBuildSeconds, rep.Elapsed.Seconds())

	cfg.logger.Info("build complete",
		zap.Int64("gamesRead", rep.GamesRead),
		zap.Int64("inserted", rep.Inserted),
		zap.Int64("skipped", rep.Skipped),
		zap.Int64("filtered", rep.Filtered),
		zap.Int("nodes", tree.Len()),
		zap.Duration("elapsed", rep.Elapsed),
	)
	report()

	return tree, rep, nil
}

// newAnchorTree creates a tree anchored at fen, or at the standard
// starting position when fen is empty.
func newAnchorTree(fen string) (*Tree, error) {
	if fen == "" {
		return NewTree(), nil
	}
	return NewAnchoredTree(fen)
}
