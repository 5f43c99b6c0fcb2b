package stages

import (
	"context"
	"fmt"

	"isobinder/internal/adapters/filesystem"
	"isobinder/internal/domain"
)

// Verify is stage 7: it recomputes each folder's candidate statuses from
// the files actually present, flags tracked folders that ended up empty and
// removes orphaned empty folders no record owns.
type Verify struct {
	rt *Runtime
}

func NewVerify(rt *Runtime) *Verify {
	return &Verify{rt: rt}
}

const stageVerify = "verify"

func (v *Verify) Execute(ctx context.Context) error {
	records, err := v.rt.Tracker.Load()
	if err != nil {
		return fmt.Errorf("load tracker: %w", err)
	}
	tracked := make(map[string]bool, len(records))
	for _, r := range records {
		if r.FolderName != "" {
			tracked[r.FolderName] = true
		}
	}

	folders, err := v.rt.folders()
	if err != nil {
		return err
	}
	stats := v.rt.Summary.Stage(stageVerify)

	for _, folder := range folders {
		path := v.rt.folderPath(folder)
		files, err := filesystem.ListFiles(path)
		if err != nil {
			v.rt.fail(stageVerify, folder, err)
			continue
		}

		if len(files) == 0 {
			if tracked[folder] {
				v.rt.Summary.AddIssue(fmt.Sprintf("folder %s is tracked but empty", folder))
				v.rt.Logs.Action.Warn().Str("folder", folder).Msg("tracked folder is empty")
			} else if removed, err := filesystem.RemoveIfEmpty(path); err != nil {
				v.rt.fail(stageVerify, folder, err)
			} else if removed {
				v.rt.Logs.Action.Info().Str("folder", folder).Msg("orphaned empty folder removed")
			}
			continue
		}

		if err := v.verifyFolder(folder, path, files); err != nil {
			v.rt.fail(stageVerify, folder, err)
			continue
		}
		stats.Processed++
	}
	return ctx.Err()
}

// verifyFolder updates the candidate table's statuses against the source
// originals actually present
func (v *Verify) verifyFolder(folder, path string, files []string) error {
	rows, found, err := v.rt.Candidates.Load(path)
	if err != nil {
		v.rt.Logs.Failure(stageVerify, folder, err)
	}
	if !found || len(rows) == 0 {
		return nil
	}

	present := make(map[string]bool)
	for _, name := range files {
		if domain.Classify(name) != domain.RoleSource {
			continue
		}
		if key, ok := domain.IsoKeyOf(name); ok {
			present[key] = true
		}
	}

	changed := false
	for i := range rows {
		status := domain.StatusMissing
		if present[rows[i].IsoKey] {
			status = domain.StatusOK
		}
		if rows[i].Status != status {
			rows[i].Status = status
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return v.rt.Candidates.Save(path, rows)
}
