package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"isobinder/internal/application/stages"
	"isobinder/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full consolidation pipeline",
	Long: `Run all seven stages in order: reconcile, catalog, extract, backup,
cleanup, merge, verify.

The run is idempotent: folders whose sources did not change since the last
run keep their merged output untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePaths(); err != nil {
			return err
		}

		summary, err := runner.Run(context.Background(), paths)
		if err != nil {
			return err
		}

		fmt.Println(stages.Describe(summary))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
