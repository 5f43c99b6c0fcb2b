package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"isobinder/internal/application/stages"
	"isobinder/internal/runlog"
	"isobinder/internal/runner"
)

type stageRunner interface {
	Execute(ctx context.Context) error
}

// stageSpecs binds one CLI subcommand to each pipeline stage. Stages assume
// the state their predecessors leave behind; running one out of order is
// safe but may do nothing.
var stageSpecs = []struct {
	name  string
	short string
	build func(rt *stages.Runtime) stageRunner
}{
	{"reconcile", "Align folders with the tracker and fetch source documents",
		func(rt *stages.Runtime) stageRunner { return stages.NewReconcile(rt) }},
	{"catalog", "Derive each folder's candidate table from its source files",
		func(rt *stages.Runtime) stageRunner { return stages.NewCatalog(rt) }},
	{"extract", "Extract referenced master pages into numbered files",
		func(rt *stages.Runtime) stageRunner { return stages.NewExtract(rt) }},
	{"backup", "Duplicate pages and sources with the backup suffix",
		func(rt *stages.Runtime) stageRunner { return stages.NewBackup(rt) }},
	{"cleanup", "Remove source originals absent from the candidate table",
		func(rt *stages.Runtime) stageRunner { return stages.NewCleanup(rt) }},
	{"merge", "Merge each folder into a deduplicated Combined.pdf",
		func(rt *stages.Runtime) stageRunner { return stages.NewMerge(rt) }},
	{"verify", "Recompute folder statuses and drop orphaned empty folders",
		func(rt *stages.Runtime) stageRunner { return stages.NewVerify(rt) }},
}

func runStage(build func(rt *stages.Runtime) stageRunner) error {
	if err := requirePaths(); err != nil {
		return err
	}

	logs, err := runlog.Open(paths.Dest)
	if err != nil {
		return err
	}
	rt, closeAll, err := runner.Build(paths, logs)
	if err != nil {
		logs.Close()
		return err
	}
	defer closeAll()

	if err := build(rt).Execute(context.Background()); err != nil {
		return err
	}

	fmt.Println(stages.Describe(rt.Summary))
	return nil
}

func init() {
	for _, spec := range stageSpecs {
		build := spec.build
		rootCmd.AddCommand(&cobra.Command{
			Use:   spec.name,
			Short: spec.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStage(build)
			},
		})
	}
}
