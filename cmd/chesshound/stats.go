package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/discochess/chesshound"
)

var statsCmd = &cobra.Command{
	Use:   "stats [MOVES...]",
	Short: "Takes PGN from standard input and gives statistics on games found",
	Long: `Read a PGN collection from standard input, build its move tree, and
print outcome statistics. Positional MOVES narrow the statistics to games
that continued with those moves from the starting position.

Examples:
  # Whole collection
  chesshound stats < games.pgn

  # Games that began 1.e4 c5, with the continuations seen
  chesshound stats e4 c5 --branches < games.pgn`,
	RunE: runStats,
}

var (
	showBranches bool
	statsSubject string
	statsFilter  string
)

func init() {
	statsCmd.Flags().BoolVarP(&showBranches, "branches", "b", false, "show all moves that occur after this one in the game set")
	statsCmd.Flags().StringVar(&statsSubject, "subject", "", "player under analysis, for subject-based filters")
	statsCmd.Flags().StringVar(&statsFilter, "filter", "", "JSON sampling filter")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	filter, err := parseFilterFlag(statsFilter)
	if err != nil {
		return err
	}

	tree, _, err := chesshound.BuildTree(context.Background(), os.Stdin, filter,
		chesshound.WithSubject(statsSubject),
		chesshound.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("building tree: %w", err)
	}

	view, err := chesshound.Query(tree, args)
	if err != nil {
		var pathErr *chesshound.PathError
		if errors.As(err, &pathErr) {
			return fmt.Errorf("no games continue with %q after %d matched moves", pathErr.Move, pathErr.MatchedPlies)
		}
		return err
	}

	fmt.Println(formatStats(view, showBranches))
	return nil
}

// formatStats renders the classic stats block: game count, outcome
// percentages, and optionally the continuations seen.
func formatStats(view *chesshound.NodeView, branches bool) string {
	out := fmt.Sprintf("%d games\nWhite Wins: %.2f%%\nBlack Wins: %.2f%%\nDraw: %.2f%%",
		view.Visits,
		pct(view.WhiteWinRate),
		pct(view.BlackWinRate),
		pct(view.DrawRate),
	)

	if branches {
		if len(view.Children) > 0 {
			moves := make([]string, 0, len(view.Children))
			for _, c := range view.Children {
				moves = append(moves, c.Move)
			}
			sort.Strings(moves)
			out += "\nMoves:"
			for _, m := range moves {
				out += " " + m
			}
		} else {
			out += "\nNo moves"
		}
	}
	return out
}

func pct(rate *float64) float64 {
	if rate == nil {
		return 0
	}
	return *rate * 100
}

func parseFilterFlag(s string) (*chesshound.Filter, error) {
	if s == "" {
		return nil, nil
	}
	f, err := chesshound.ParseFilter([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("parsing filter: %w", err)
	}
	return f, nil
}
