// Package stages implements the seven pipeline stages and the orchestrator
// composing them. Each stage is a command over (tracker, filesystem view)
// with per-unit error isolation: one failing row, file or folder is logged
// and skipped, never aborting the stage or the run.
package stages

import (
	"path/filepath"
	"time"

	"isobinder/internal/adapters/filesystem"
	"isobinder/internal/domain"
	"isobinder/internal/ports"
	"isobinder/internal/runlog"
)

// Runtime carries the run's collaborators and state into every stage.
// It replaces the ambient globals of the original workflow.
type Runtime struct {
	Dest      string // destination root
	MasterPDF string // master document path

	Tracker    ports.EntityTable
	Candidates ports.CandidateStore
	Locator    ports.SourceLocator
	Docs       ports.DocumentEngine
	Cache      ports.MergeCache
	Master     ports.MasterIndex

	Logs    *runlog.Logs
	Summary *domain.RunSummary

	// Now stamps merge-cache entries; tests pin it
	Now func() time.Time
}

func (rt *Runtime) folderPath(name string) string {
	return filepath.Join(rt.Dest, name)
}

// folders snapshots the destination root's folder list for one stage pass
func (rt *Runtime) folders() ([]string, error) {
	return filesystem.ListDirs(rt.Dest)
}

// fail records a recoverable per-unit failure and keeps going
func (rt *Runtime) fail(stage, unit string, err error) {
	rt.Summary.Stage(stage).Failed++
	rt.Logs.Failure(stage, unit, err)
}

func (rt *Runtime) now() time.Time {
	if rt.Now != nil {
		return rt.Now()
	}
	return time.Now()
}
