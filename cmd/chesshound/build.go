package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/discochess/chesshound"
	"github.com/discochess/chesshound/internal/httpsrc"
	"github.com/discochess/chesshound/internal/partition"
	"github.com/discochess/chesshound/internal/partition/openingshard"
	"github.com/discochess/chesshound/internal/partition/roundrobin"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a tree snapshot from a PGN source",
	Long: `Build a move tree from a PGN source and save it as a named snapshot
under the snapshot directory.

The source may be a local file (optionally .zst or .gz compressed) or an
HTTP(S) URL, which is downloaded with resume support.

Examples:
  # From a local Lichess database dump
  chesshound build --source lichess_db_blitz_2026-07.pgn.zst --name blitz

  # Download, filter to rapid games, and anchor at a Sicilian position
  chesshound build --source https://example.com/games.pgn.zst --name sicilian \
    --filter '{"op":"speed","speed":"rapid"}' \
    --anchor "rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2"`,
	RunE: runBuild,
}

var (
	buildSource    string
	buildName      string
	buildFilter    string
	buildSubject   string
	buildAnchor    string
	buildWorkers   int
	buildShards    int
	buildPartition string
)

func init() {
	buildCmd.Flags().StringVar(&buildSource, "source", "", "PGN file or URL to build from (default: standard input)")
	buildCmd.Flags().StringVar(&buildName, "name", "main", "snapshot name to write")
	buildCmd.Flags().StringVar(&buildFilter, "filter", "", "JSON sampling filter")
	buildCmd.Flags().StringVar(&buildSubject, "subject", "", "player under analysis, for subject-based filters")
	buildCmd.Flags().StringVar(&buildAnchor, "anchor", "", "anchor position FEN (default: standard starting position)")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "parse workers (default: GOMAXPROCS)")
	buildCmd.Flags().IntVar(&buildShards, "shards", 0, "parallel build shards (default: GOMAXPROCS)")
	buildCmd.Flags().StringVar(&buildPartition, "partition", "opening", "game partitioning strategy (opening, roundrobin)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	filter, err := parseFilterFlag(buildFilter)
	if err != nil {
		return err
	}
	strategy, err := partitionStrategy(buildPartition)
	if err != nil {
		return err
	}

	source, cleanup, err := openSource(buildSource)
	if err != nil {
		return err
	}
	defer cleanup()

	storeOpt, err := chesshound.WithSnapshotDir(snapshotDir)
	if err != nil {
		return err
	}

	opts := []chesshound.Option{
		storeOpt,
		chesshound.WithSubject(buildSubject),
		chesshound.WithPartitionStrategy(strategy),
		chesshound.WithLogger(logger),
		chesshound.WithBuildProgress(func(p chesshound.BuildProgress) {
			fmt.Printf("\r[Build] %d games read, %d inserted", p.GamesRead, p.Inserted)
		}),
	}
	if buildAnchor != "" {
		opts = append(opts, chesshound.WithAnchor(buildAnchor))
	}
	if buildWorkers > 0 {
		opts = append(opts, chesshound.WithWorkers(buildWorkers))
	}
	if buildShards > 0 {
		opts = append(opts, chesshound.WithShards(buildShards))
	}

	ex, err := chesshound.New(opts...)
	if err != nil {
		return err
	}
	defer ex.Close()
	ex.SetSource(buildSource)

	ctx := context.Background()
	report, err := ex.BuildFromPGN(ctx, source, filter)
	if err != nil {
		return fmt.Errorf("building tree: %w", err)
	}
	fmt.Println()

	if err := ex.SaveSnapshot(ctx, buildName); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	fmt.Printf("Snapshot %q written to %s\n", buildName, snapshotDir)
	fmt.Printf("  games read: %d\n", report.GamesRead)
	fmt.Printf("  inserted:   %d\n", report.Inserted)
	fmt.Printf("  filtered:   %d\n", report.Filtered)
	for reason, n := range report.SkipReasons {
		fmt.Printf("  skipped:    %d (%s)\n", n, reason)
	}
	fmt.Printf("  elapsed:    %s\n", report.Elapsed.Round(10*time.Millisecond))
	return nil
}

// openSource opens the build input: standard input, a local file, or a URL
// downloaded into the snapshot directory.
func openSource(source string) (io.Reader, func(), error) {
	switch {
	case source == "":
		return os.Stdin, func() {}, nil
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		dest := filepath.Join(snapshotDir, filepath.Base(source))
		if err := os.MkdirAll(snapshotDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("creating snapshot directory: %w", err)
		}
		d := httpsrc.NewDownloader()
		if err := d.DownloadToFile(context.Background(), source, dest, httpsrc.DefaultProgressFunc); err != nil {
			return nil, nil, fmt.Errorf("downloading source: %w", err)
		}
		fmt.Println()
		rc, err := httpsrc.Open(dest)
		if err != nil {
			return nil, nil, err
		}
		return rc, func() { rc.Close() }, nil
	default:
		rc, err := httpsrc.Open(source)
		if err != nil {
			return nil, nil, err
		}
		return rc, func() { rc.Close() }, nil
	}
}

func partitionStrategy(name string) (partition.Strategy, error) {
	switch name {
	case "opening":
		return openingshard.New(), nil
	case "roundrobin":
		return roundrobin.New(), nil
	}
	return nil, fmt.Errorf("unknown partition strategy %q", name)
}
