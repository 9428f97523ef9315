package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/chesshound"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show snapshot metadata",
	Long: `Show the metadata of a saved snapshot without loading its tree:
anchor position, game and node counts, build time, source and filter.

Example:
  chesshound info --name blitz`,
	RunE: runInfo,
}

var infoName string

func init() {
	infoCmd.Flags().StringVar(&infoName, "name", "main", "snapshot name to inspect")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	storeOpt, err := chesshound.WithSnapshotDir(snapshotDir)
	if err != nil {
		return err
	}
	ex, err := chesshound.New(storeOpt)
	if err != nil {
		return err
	}
	defer ex.Close()

	info, err := ex.SnapshotInfo(context.Background(), infoName)
	if err != nil {
		if errors.Is(err, chesshound.ErrSnapshotNotFound) {
			return fmt.Errorf("snapshot %q not found in %s", infoName, snapshotDir)
		}
		return err
	}

	fmt.Printf("Snapshot: %s\n", infoName)
	fmt.Printf("  version:  %d\n", info.Version)
	fmt.Printf("  anchor:   %s\n", info.Anchor)
	fmt.Printf("  games:    %d\n", info.GameCount)
	fmt.Printf("  nodes:    %d\n", info.NodeCount)
	if !info.BuiltAt.IsZero() {
		fmt.Printf("  built at: %s\n", info.BuiltAt.Format("2006-01-02 15:04:05 MST"))
	}
	if info.Source != "" {
		fmt.Printf("  source:   %s\n", info.Source)
	}
	if info.Filter != nil {
		raw, err := json.Marshal(info.Filter)
		if err != nil {
			return err
		}
		fmt.Printf("  filter:   %s\n", raw)
	}
	return nil
}
