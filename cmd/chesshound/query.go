package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/discochess/chesshound"
)

var queryCmd = &cobra.Command{
	Use:   "query [MOVES...]",
	Short: "Query a snapshot at a move path",
	Long: `Query a saved snapshot at the position reached by a sequence of SAN
moves, printing the node's statistics and observed continuations. With no
moves the anchor position is queried.

Examples:
  chesshound query --name blitz e4 e5 Nf3
  chesshound query --name blitz --order winrate e4
  chesshound query --name blitz --json d4 Nf6`,
	RunE: runQuery,
}

var (
	queryName  string
	queryOrder string
	queryJSON  bool
)

func init() {
	queryCmd.Flags().StringVar(&queryName, "name", "main", "snapshot name to query")
	queryCmd.Flags().StringVar(&queryOrder, "order", "visits", "child ordering (visits, move, winrate)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print the node view as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ordering, err := parseOrdering(queryOrder)
	if err != nil {
		return err
	}

	ex, err := openSnapshot(queryName)
	if err != nil {
		return err
	}
	defer ex.Close()

	view, err := ex.Query(args, chesshound.WithOrdering(ordering))
	if err != nil {
		var pathErr *chesshound.PathError
		if errors.As(err, &pathErr) {
			return fmt.Errorf("no games reach %q after %s",
				pathErr.Move, describePrefix(args[:pathErr.MatchedPlies]))
		}
		return err
	}

	if queryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	printView(args, view)
	return nil
}

// openSnapshot loads a named snapshot from the snapshot directory into a
// fresh Explorer.
func openSnapshot(name string) (*chesshound.Explorer, error) {
	storeOpt, err := chesshound.WithSnapshotDir(snapshotDir)
	if err != nil {
		return nil, err
	}
	ex, err := chesshound.New(storeOpt)
	if err != nil {
		return nil, err
	}
	if _, err := ex.LoadSnapshot(context.Background(), name); err != nil {
		ex.Close()
		if errors.Is(err, chesshound.ErrSnapshotNotFound) {
			return nil, fmt.Errorf("snapshot %q not found in %s (run build first)", name, snapshotDir)
		}
		return nil, err
	}
	return ex, nil
}

func printView(path []string, view *chesshound.NodeView) {
	fmt.Printf("Position: %s\n", describePrefix(path))
	fmt.Printf("Games:    %d\n", view.Visits)
	if view.EndedHere > 0 {
		fmt.Printf("Ended here: %d\n", view.EndedHere)
	}
	if view.WhiteWinRate != nil {
		fmt.Printf("White wins: %.2f%%  Black wins: %.2f%%  Draws: %.2f%%\n",
			*view.WhiteWinRate*100, *view.BlackWinRate*100, *view.DrawRate*100)
	}
	if view.AvgMoverRating != nil {
		fmt.Printf("Avg mover rating: %.0f\n", *view.AvgMoverRating)
	}

	if len(view.Children) == 0 {
		fmt.Println("No continuations.")
		return
	}
	fmt.Println("Continuations:")
	for _, c := range view.Children {
		rate := "    -"
		if c.WinRate != nil {
			rate = fmt.Sprintf("%.1f%%", *c.WinRate*100)
		}
		fmt.Printf("  %-7s %8d  %s\n", c.Move, c.Visits, rate)
	}
}

func describePrefix(path []string) string {
	if len(path) == 0 {
		return "the starting position"
	}
	return strings.Join(path, " ")
}

func parseOrdering(name string) (chesshound.Ordering, error) {
	switch name {
	case "visits":
		return chesshound.OrderByVisits, nil
	case "move":
		return chesshound.OrderByMove, nil
	case "winrate":
		return chesshound.OrderByWinRate, nil
	}
	return 0, fmt.Errorf("unknown ordering %q", name)
}
