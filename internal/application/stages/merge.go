package stages

import (
	"context"
	"os"
	"path/filepath"

	"isobinder/internal/adapters/cache"
	"isobinder/internal/adapters/filesystem"
	"isobinder/internal/domain"
	"isobinder/internal/ports"
)

// Merge is stage 6: it assembles each folder's candidate files into one
// deduplicated Combined.pdf. A folder whose candidate fingerprint matches
// the cached one is skipped outright, leaving the existing output untouched.
type Merge struct {
	rt *Runtime
}

func NewMerge(rt *Runtime) *Merge {
	return &Merge{rt: rt}
}

const stageMerge = "merge"

func (m *Merge) Execute(ctx context.Context) error {
	folders, err := m.rt.folders()
	if err != nil {
		return err
	}
	stats := m.rt.Summary.Stage(stageMerge)

	for _, folder := range folders {
		merged, err := m.mergeFolder(folder)
		if err != nil {
			m.rt.fail(stageMerge, folder, err)
			continue
		}
		if merged {
			stats.Processed++
		} else {
			stats.Skipped++
		}
	}
	return ctx.Err()
}

// mergeFolder returns true when a new merged output was written
func (m *Merge) mergeFolder(folder string) (bool, error) {
	path := m.rt.folderPath(folder)
	files, err := filesystem.ListFiles(path)
	if err != nil {
		return false, err
	}

	candidates := domain.MergeCandidates(files)
	if len(candidates) == 0 {
		return false, nil
	}

	fp, err := cache.FolderFingerprint(path, candidates)
	if err != nil {
		return false, err
	}
	if entry, found, err := m.rt.Cache.Get(path); err != nil {
		return false, err
	} else if found && entry.Fingerprint == fp {
		m.rt.Logs.Action.Debug().Str("folder", folder).Msg("merge cache hit")
		return false, nil
	}

	selections := m.dedupe(folder, path, candidates)
	if len(selections) == 0 {
		return false, nil
	}

	// Assemble to a temp name first: the real output only ever appears
	// complete, and a failed write leaves no cache entry behind, forcing a
	// retry on the next run.
	tmp := filepath.Join(path, ".combined.part.pdf")
	defer os.Remove(tmp)
	if err := m.rt.Docs.Merge(selections, tmp); err != nil {
		return false, err
	}
	out := filepath.Join(path, domain.MergedFileName)
	if err := os.Rename(tmp, out); err != nil {
		return false, err
	}

	if err := m.rt.Cache.Put(path, domain.MergeCacheEntry{Fingerprint: fp, Timestamp: m.rt.now()}); err != nil {
		return false, err
	}
	m.rt.Logs.Action.Info().Str("folder", folder).Int("parts", len(selections)).Msg("merged output written")
	return true, nil
}

// dedupe walks the candidates in precedence order and keeps each page the
// first time its content fingerprint is seen. The fingerprint set lives only
// for this folder's pass; it is never persisted or shared across folders.
func (m *Merge) dedupe(folder, path string, candidates []string) []ports.PageSelection {
	seen := make(map[domain.Fingerprint]bool)
	var selections []ports.PageSelection

	for _, name := range candidates {
		filePath := filepath.Join(path, name)
		doc, err := m.rt.Docs.Open(filePath)
		if err != nil {
			m.rt.fail(stageMerge, name, err)
			continue
		}

		var keep []int
		for page := 1; page <= doc.PageCount(); page++ {
			fp, err := doc.PageFingerprint(page)
			if err != nil {
				m.rt.fail(stageMerge, name, err)
				continue
			}
			if seen[fp] {
				continue
			}
			seen[fp] = true
			keep = append(keep, page)
		}
		doc.Close()

		if len(keep) > 0 {
			selections = append(selections, ports.PageSelection{Path: filePath, Pages: keep})
		} else {
			m.rt.Logs.Action.Debug().Str("folder", folder).Str("file", name).Msg("all pages duplicate, file skipped")
		}
	}
	return selections
}
