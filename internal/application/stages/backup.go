package stages

import (
	"context"
	"path/filepath"

	"isobinder/internal/adapters/filesystem"
	"isobinder/internal/application"
	"isobinder/internal/domain"
)

// Backup is stage 4: it duplicates every page extract and source original
// with the backup suffix. Files already carrying the marker are left alone,
// and SafeCopy makes a rerun with unchanged sources a no-op.
type Backup struct {
	rt *Runtime
}

func NewBackup(rt *Runtime) *Backup {
	return &Backup{rt: rt}
}

const stageBackup = "backup"

func (b *Backup) Execute(ctx context.Context) error {
	folders, err := b.rt.folders()
	if err != nil {
		return err
	}
	stats := b.rt.Summary.Stage(stageBackup)

	for _, folder := range folders {
		path := b.rt.folderPath(folder)
		files, err := filesystem.ListFiles(path)
		if err != nil {
			b.rt.fail(stageBackup, folder, err)
			continue
		}

		for _, name := range files {
			switch domain.Classify(name) {
			case domain.RolePage, domain.RoleSource:
			default:
				continue
			}
			src := filepath.Join(path, name)
			dst := filepath.Join(path, domain.BackupNameFor(name))
			if _, err := filesystem.SafeCopy(src, dst); err != nil {
				b.rt.fail(stageBackup, name, &application.CopyError{Src: src, Dst: dst, Err: err})
				continue
			}
			stats.Processed++
		}
	}
	return ctx.Err()
}
