package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"isobinder/internal/adapters/sourceindex"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the local index of the server store",
	Long: `The pipeline keeps a local SQLite index of the server store so that
source lookups do not walk the share on every run. The index refreshes
incrementally at the start of each run; these commands force a sync or a
rebuild by hand.`,
}

var indexSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Incrementally refresh the index against the server store",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex()
		if err != nil {
			return err
		}
		defer idx.Close()

		stats, err := idx.SyncIncremental()
		if err != nil {
			return err
		}
		printSync(stats)
		return nil
	},
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the index from a full walk of the server store",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex()
		if err != nil {
			return err
		}
		defer idx.Close()

		stats, err := idx.SyncFull()
		if err != nil {
			return err
		}
		printSync(stats)
		return nil
	},
}

func openIndex() (*sourceindex.Index, error) {
	if paths.Server == "" {
		return nil, fmt.Errorf("--server is required")
	}
	idx := sourceindex.NewIndex()
	if err := idx.Open(paths.Server); err != nil {
		return nil, err
	}
	return idx, nil
}

func printSync(stats *sourceindex.SyncStats) {
	fmt.Printf("%d scanned, %d added, %d updated, %d deleted in %s\n",
		stats.Scanned, stats.Added, stats.Updated, stats.Deleted, stats.Duration)
}

func init() {
	indexCmd.AddCommand(indexSyncCmd)
	indexCmd.AddCommand(indexRebuildCmd)
	rootCmd.AddCommand(indexCmd)
}
