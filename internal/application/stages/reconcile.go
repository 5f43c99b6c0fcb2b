package stages

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"isobinder/internal/adapters/filesystem"
	"isobinder/internal/application"
	"isobinder/internal/domain"
)

// Reconcile is stage 1: it aligns physical folders with the tracker's
// desired names and fetches each record's source document into its folder.
type Reconcile struct {
	rt *Runtime
}

func NewReconcile(rt *Runtime) *Reconcile {
	return &Reconcile{rt: rt}
}

const stageReconcile = "reconcile"

func (s *Reconcile) Execute(ctx context.Context) error {
	records, err := s.rt.Tracker.Load()
	if err != nil {
		return fmt.Errorf("load tracker: %w", err)
	}

	for i := range records {
		records[i].RecomputeFolderName()
		if records[i].HistoryName == "" {
			// First sighting: the desired name is also the history name.
			records[i].HistoryName = records[i].FolderName
		}
	}

	s.reconcileFolders(records)
	s.fetchSources(records)

	if err := s.rt.Tracker.Save(records); err != nil {
		return fmt.Errorf("save tracker: %w", err)
	}

	for _, r := range records {
		switch r.Status {
		case domain.StatusOK:
			s.rt.Summary.OK++
		case domain.StatusMissing:
			s.rt.Summary.Missing++
		}
	}
	return ctx.Err()
}

// reconcileFolders renames or merges each record's history folder onto its
// desired name. The physical move happens once per (history, desired) pair;
// the bookkeeping update is applied to every row referencing that history
// name in the same pass.
func (s *Reconcile) reconcileFolders(records []domain.Record) {
	stats := s.rt.Summary.Stage(stageReconcile)
	moved := make(map[[2]string]bool)

	for i := range records {
		r := &records[i]
		if !r.Identified() {
			stats.Skipped++
			continue
		}
		desired, history := r.FolderName, r.HistoryName
		key := [2]string{history, desired}
		if moved[key] {
			r.HistoryName = desired
			continue
		}

		desiredPath := s.rt.folderPath(desired)
		historyPath := s.rt.folderPath(history)

		if history != desired {
			if _, err := os.Stat(historyPath); err == nil {
				if _, err := os.Stat(desiredPath); os.IsNotExist(err) {
					if err := os.Rename(historyPath, desiredPath); err != nil {
						s.rt.fail(stageReconcile, history, err)
						continue
					}
					s.rt.Logs.Action.Info().Str("from", history).Str("to", desired).Msg("folder renamed")
				} else {
					// Two names converged onto one folder: merge contents.
					removed, err := filesystem.MergeInto(historyPath, desiredPath)
					if err != nil {
						s.rt.fail(stageReconcile, history, err)
					}
					if !removed {
						s.rt.Summary.AddIssue(fmt.Sprintf("folder %s still holds unresolved files after merge into %s", history, desired))
						s.rt.Logs.Action.Warn().Str("folder", history).Msg("residual folder left for review")
					} else {
						s.rt.Logs.Action.Info().Str("from", history).Str("to", desired).Msg("folder merged")
					}
				}
				// Every row still pointing at the old name follows the move.
				for j := range records {
					if records[j].HistoryName == history {
						records[j].HistoryName = desired
					}
				}
			}
			moved[key] = true
		}

		if err := os.MkdirAll(desiredPath, 0755); err != nil {
			s.rt.fail(stageReconcile, desired, err)
			continue
		}
		r.HistoryName = desired
		stats.Processed++
	}
}

// fetchSources copies each record's source document from the server store
// into its folder, marking the record OK or MISSING
func (s *Reconcile) fetchSources(records []domain.Record) {
	stats := s.rt.Summary.Stage(stageReconcile)

	for i := range records {
		r := &records[i]
		if !r.Identified() || r.IsoNo == "" {
			continue
		}
		folder := s.rt.folderPath(r.FolderName)

		src, err := s.rt.Locator.Locate(r.IsoNo)
		if err != nil {
			r.Status = domain.StatusMissing
			if errors.Is(err, application.ErrLookup) {
				// The folder is still created so the record has a home.
				os.MkdirAll(folder, 0755)
				s.rt.Logs.Report.Error().Str("iso", r.IsoNo).Msg("source document missing on server store")
			} else {
				s.rt.fail(stageReconcile, r.IsoNo, err)
			}
			continue
		}

		dst := filepath.Join(folder, filepath.Base(src))
		if _, err := filesystem.SafeCopy(src, dst); err != nil {
			r.Status = domain.StatusMissing
			s.rt.fail(stageReconcile, r.IsoNo, &application.CopyError{Src: src, Dst: dst, Err: err})
			continue
		}
		r.Status = domain.StatusOK
		stats.Processed++
	}
}
