package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"isobinder/internal/config"
)

var paths config.Paths

var rootCmd = &cobra.Command{
	Use:   "isobinder-cli",
	Short: "CLI for consolidating source documents into per-folder binders",
	Long: `isobinder-cli drives the consolidation pipeline from the command line.

It reconciles the destination folder tree against a tracker workbook,
fetches source documents from the server store, extracts referenced master
pages and merges each folder into a deduplicated Combined.pdf.

Paths can also come from the ISOBINDER_TRACKER, ISOBINDER_SERVER,
ISOBINDER_MASTER_INDEX, ISOBINDER_MASTER_PDF and ISOBINDER_DEST
environment variables.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	env := config.FromEnv()
	rootCmd.PersistentFlags().StringVar(&paths.Tracker, "tracker", env.Tracker, "path to the tracker workbook")
	rootCmd.PersistentFlags().StringVar(&paths.Server, "server", env.Server, "server store root holding the source documents")
	rootCmd.PersistentFlags().StringVar(&paths.MasterIndex, "master-index", env.MasterIndex, "text index mapping document codes to master pages")
	rootCmd.PersistentFlags().StringVar(&paths.MasterPDF, "master-pdf", env.MasterPDF, "master PDF pages are extracted from")
	rootCmd.PersistentFlags().StringVar(&paths.Dest, "dest", env.Dest, "destination root receiving the folder tree")
}

// requirePaths fails with a usage error when a run input is missing
func requirePaths() error {
	if !paths.Complete() {
		return fmt.Errorf("all five paths are required; set the flags or the ISOBINDER_* environment variables")
	}
	return nil
}
