package stages

import (
	"context"
	"os"
	"path/filepath"

	"isobinder/internal/adapters/filesystem"
	"isobinder/internal/domain"
)

// Cleanup is stage 5: it removes source originals no longer referenced by
// the folder's candidate table. Page extracts, backup copies and the merged
// output are never touched.
type Cleanup struct {
	rt *Runtime
}

func NewCleanup(rt *Runtime) *Cleanup {
	return &Cleanup{rt: rt}
}

const stageCleanup = "cleanup"

func (c *Cleanup) Execute(ctx context.Context) error {
	folders, err := c.rt.folders()
	if err != nil {
		return err
	}
	stats := c.rt.Summary.Stage(stageCleanup)

	for _, folder := range folders {
		path := c.rt.folderPath(folder)
		rows, found, err := c.rt.Candidates.Load(path)
		if err != nil {
			c.rt.Logs.Failure(stageCleanup, folder, err)
		}
		if !found {
			stats.Skipped++
			continue
		}

		valid := make(map[string]bool, len(rows))
		for _, r := range rows {
			valid[r.IsoKey] = true
		}

		files, err := filesystem.ListFiles(path)
		if err != nil {
			c.rt.fail(stageCleanup, folder, err)
			continue
		}
		for _, name := range files {
			if domain.Classify(name) != domain.RoleSource {
				continue
			}
			key, ok := domain.IsoKeyOf(name)
			if !ok || valid[key] {
				continue
			}
			if err := os.Remove(filepath.Join(path, name)); err != nil {
				c.rt.fail(stageCleanup, name, err)
				continue
			}
			c.rt.Logs.Action.Info().Str("folder", folder).Str("file", name).Msg("redundant source removed")
			stats.Processed++
		}
	}
	return ctx.Err()
}
