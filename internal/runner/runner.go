// Package runner is the composition root: it wires the concrete adapters
// into a pipeline runtime and executes full runs. Both the CLI and the TUI
// go through it so the wiring exists exactly once.
package runner

import (
	"context"
	"fmt"

	"isobinder/internal/adapters/cache"
	"isobinder/internal/adapters/masterindex"
	"isobinder/internal/adapters/pdf"
	"isobinder/internal/adapters/sourceindex"
	"isobinder/internal/adapters/xlsx"
	"isobinder/internal/application"
	"isobinder/internal/application/stages"
	"isobinder/internal/config"
	"isobinder/internal/domain"
	"isobinder/internal/ports"
	"isobinder/internal/runlog"
)

// Build wires a runtime for the given paths. The returned close function
// releases the source index and the log files; call it when the run is done.
func Build(paths config.Paths, logs *runlog.Logs) (*stages.Runtime, func() error, error) {
	tracker := xlsx.NewTracker(paths.Tracker)
	if created, err := tracker.Bootstrap(); err != nil {
		return nil, nil, &application.SetupError{Path: paths.Tracker, Reason: err.Error()}
	} else if created {
		// A fresh workbook has no records to process; stop before any stage
		// touches the destination tree.
		return nil, nil, &application.SetupError{
			Path:   paths.Tracker,
			Reason: "tracker workbook created, fill in the Iso/loop/system columns and rerun",
		}
	}

	master, err := masterindex.Load(paths.MasterIndex)
	if err != nil {
		return nil, nil, &application.SetupError{Path: paths.MasterIndex, Reason: err.Error()}
	}

	locator, closeIndex := openLocator(paths.Server, logs)

	rt := &stages.Runtime{
		Dest:       paths.Dest,
		MasterPDF:  paths.MasterPDF,
		Tracker:    tracker,
		Candidates: xlsx.NewCandidateStore(),
		Locator:    locator,
		Docs:       pdf.NewEngine(),
		Cache:      cache.NewSidecar(),
		Master:     master,
		Logs:       logs,
		Summary:    &domain.RunSummary{},
	}

	closeAll := func() error {
		if closeIndex != nil {
			closeIndex()
		}
		return logs.Close()
	}
	return rt, closeAll, nil
}

// openLocator prefers the persistent source index and falls back to a plain
// directory scan both when the index cannot be opened and, per lookup, when
// an indexed document has vanished since the last sync.
func openLocator(serverPath string, logs *runlog.Logs) (loc ports.SourceLocator, closeIndex func()) {
	scanner := sourceindex.NewScanner(serverPath)

	idx := sourceindex.NewIndex()
	if err := idx.Open(serverPath); err != nil {
		logs.Action.Warn().Err(err).Msg("source index unavailable, falling back to directory scans")
		return scanner, nil
	}

	var stats *sourceindex.SyncStats
	var err error
	if idx.NeedsFullRebuild() {
		stats, err = idx.SyncFull()
	} else {
		stats, err = idx.SyncIncremental()
	}
	if err != nil {
		logs.Action.Warn().Err(err).Msg("source index sync failed, falling back to directory scans")
		idx.Close()
		return scanner, nil
	}
	logs.Action.Info().
		Int("added", stats.Added).
		Int("updated", stats.Updated).
		Int("deleted", stats.Deleted).
		Dur("took", stats.Duration).
		Msg("source index synced")

	return &sourceindex.Fallback{Primary: idx, Secondary: scanner}, func() { idx.Close() }
}

// Run executes one full pipeline run for the given paths, logging into the
// destination root.
func Run(ctx context.Context, paths config.Paths) (*domain.RunSummary, error) {
	logs, err := runlog.Open(paths.Dest)
	if err != nil {
		return nil, &application.SetupError{Path: paths.Dest, Reason: fmt.Sprintf("cannot open logs: %v", err)}
	}

	rt, closeAll, err := Build(paths, logs)
	if err != nil {
		logs.Close()
		return nil, err
	}
	defer closeAll()

	return stages.NewPipeline(rt).Run(ctx)
}
