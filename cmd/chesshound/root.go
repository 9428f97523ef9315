package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags.
	snapshotDir string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "chesshound",
	Short: "Find opening patterns in sets of chess games",
	Long: `Chesshound is a CLI tool for finding patterns in sets of chess games.

It builds a move tree over a game collection and surfaces statistics
(frequency, win rates, ratings) at every position reached.

Examples:
  # Statistics for the whole collection on standard input
  chesshound stats < games.pgn

  # Statistics after 1.e4 c5, listing continuations
  chesshound stats e4 c5 --branches < games.pgn

  # Build a reusable snapshot from a Lichess database dump
  chesshound build --source lichess_db_blitz_2026-07.pgn.zst --name blitz

  # Query a snapshot
  chesshound query --name blitz e4 e5 Nf3`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&snapshotDir, "snapshot-dir", "d", "./data", "directory containing tree snapshots")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// newLogger builds the CLI logger; verbose enables debug output.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}
