package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/discochess/chesshound"
	"github.com/discochess/chesshound/internal/analysis"
)

var compareCmd = &cobra.Command{
	Use:   "compare MOVE1 MOVE2",
	Short: "Compare two continuations statistically",
	Long: `Compare the outcomes of two candidate moves from the same position,
with Wilson confidence intervals for each and a two-proportion z-test on
the difference in score.

Examples:
  chesshound compare --name blitz e4 d4
  chesshound compare --name blitz --path "e4 c5" Nf3 Nc3`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

var (
	compareName string
	comparePath string
)

func init() {
	compareCmd.Flags().StringVar(&compareName, "name", "main", "snapshot name to query")
	compareCmd.Flags().StringVar(&comparePath, "path", "", "space-separated SAN moves leading to the position")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ex, err := openSnapshot(compareName)
	if err != nil {
		return err
	}
	defer ex.Close()

	path := strings.Fields(comparePath)
	o1, err := moveOutcomes(ex, path, args[0])
	if err != nil {
		return err
	}
	o2, err := moveOutcomes(ex, path, args[1])
	if err != nil {
		return err
	}

	cmp := analysis.CompareMoves(o1, o2, 0.95)
	fmt.Println(cmp.Summary())
	return nil
}

func moveOutcomes(ex *chesshound.Explorer, path []string, move string) (analysis.Outcomes, error) {
	full := append(append([]string{}, path...), move)
	view, err := ex.Query(full)
	if err != nil {
		var pathErr *chesshound.PathError
		if errors.As(err, &pathErr) {
			return analysis.Outcomes{}, fmt.Errorf("no games play %q after %s",
				pathErr.Move, describePrefix(full[:pathErr.MatchedPlies]))
		}
		return analysis.Outcomes{}, err
	}
	return analysis.Outcomes{
		Move:   move,
		Wins:   view.Wins,
		Losses: view.Losses,
		Draws:  view.Draws,
	}, nil
}
