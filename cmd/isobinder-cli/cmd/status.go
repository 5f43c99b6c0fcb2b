package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"isobinder/internal/adapters/xlsx"
	"isobinder/internal/domain"
)

var statusMissingOnly bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tracker's records and their OK/MISSING state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if paths.Tracker == "" {
			return fmt.Errorf("--tracker is required")
		}

		records, err := xlsx.NewTracker(paths.Tracker).Load()
		if err != nil {
			return err
		}

		ok, missing := 0, 0
		for _, r := range records {
			switch r.Status {
			case domain.StatusOK:
				ok++
			case domain.StatusMissing:
				missing++
			}
			if statusMissingOnly && r.Status != domain.StatusMissing {
				continue
			}
			status := string(r.Status)
			if status == "" {
				status = "-"
			}
			fmt.Printf("%-12s %-20s %s\n", r.IsoNo, r.FolderName, status)
		}
		fmt.Printf("\n%d records, %d OK, %d MISSING\n", len(records), ok, missing)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusMissingOnly, "missing", false, "only list records whose source was not found")
	rootCmd.AddCommand(statusCmd)
}
