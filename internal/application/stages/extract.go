package stages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"isobinder/internal/domain"
)

// Extract is stage 3: it pulls each referenced page out of the master
// document into a numbered file inside the folder. Pages already extracted
// are skipped, so reruns only do new work.
type Extract struct {
	rt *Runtime
}

func NewExtract(rt *Runtime) *Extract {
	return &Extract{rt: rt}
}

const stageExtract = "extract"

func (e *Extract) Execute(ctx context.Context) error {
	total, err := e.rt.Docs.PageCount(e.rt.MasterPDF)
	if err != nil {
		return fmt.Errorf("master document: %w", err)
	}

	folders, err := e.rt.folders()
	if err != nil {
		return err
	}
	stats := e.rt.Summary.Stage(stageExtract)

	for _, folder := range folders {
		path := e.rt.folderPath(folder)
		rows, found, err := e.rt.Candidates.Load(path)
		if err != nil {
			e.rt.Logs.Failure(stageExtract, folder, err)
		}
		if !found {
			stats.Skipped++
			continue
		}

		for _, row := range rows {
			for _, page := range row.Pages {
				if page < 1 || page > total {
					e.rt.Logs.Failure(stageExtract, folder,
						fmt.Errorf("page %d of %s out of range (master has %d pages)", page, row.IsoKey, total))
					continue
				}
				out := filepath.Join(path, domain.PageFileName(page))
				if _, err := os.Stat(out); err == nil {
					continue // already extracted
				}
				if err := e.rt.Docs.ExtractPage(e.rt.MasterPDF, page, out); err != nil {
					e.rt.fail(stageExtract, out, err)
					continue
				}
				stats.Processed++
			}
		}
	}
	return ctx.Err()
}
