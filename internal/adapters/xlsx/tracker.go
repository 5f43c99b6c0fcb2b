package xlsx

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"isobinder/internal/domain"
	"isobinder/internal/ports"
)

// Tracker column headers, in workbook order
const (
	colIsoNo       = "Iso no"
	colLoopNo      = "loop no"
	colSystemNo    = "system no"
	colFolderName  = "folder name"
	colHistoryName = "history folder name"
	colStatus      = "ISO Status"
)

var trackerColumns = []string{colIsoNo, colLoopNo, colSystemNo, colFolderName, colHistoryName, colStatus}

// Tracker implements ports.EntityTable over the tracker workbook
type Tracker struct {
	path string
}

var _ ports.EntityTable = (*Tracker)(nil)

func NewTracker(path string) *Tracker {
	return &Tracker{path: path}
}

// Bootstrap creates an empty tracker workbook with the header row when none
// exists. It returns true when a new workbook was written, so the caller can
// tell the operator to fill in the key columns before the next run.
func (t *Tracker) Bootstrap() (bool, error) {
	if _, err := os.Stat(t.path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if err := writeHeader(f, sheet, trackerColumns); err != nil {
		return false, err
	}
	if err := f.SaveAs(t.path); err != nil {
		return false, err
	}
	return true, nil
}

// Load reads every record row. Rows without both key parts are kept (they
// round-trip on Save) but marked by Identified() for stages to skip.
func (t *Tracker) Load() ([]domain.Record, error) {
	f, err := excelize.OpenFile(t.path)
	if err != nil {
		return nil, fmt.Errorf("open tracker: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read tracker: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	s, err := schemaOf(rows[0], trackerColumns, filepath.Base(t.path))
	if err != nil {
		return nil, err
	}

	var records []domain.Record
	for _, row := range rows[1:] {
		records = append(records, domain.Record{
			IsoNo:       s.cell(row, colIsoNo),
			LoopNo:      s.cell(row, colLoopNo),
			SystemNo:    s.cell(row, colSystemNo),
			FolderName:  s.cell(row, colFolderName),
			HistoryName: s.cell(row, colHistoryName),
			Status:      parseStatus(s.cell(row, colStatus)),
		})
	}
	return records, nil
}

// Save rewrites the workbook in full and paints MISSING rows red, so the
// operator sees unresolved records at a glance.
func (t *Tracker) Save(records []domain.Record) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := writeHeader(f, sheet, trackerColumns); err != nil {
		return err
	}
	for i, r := range records {
		values := []string{r.IsoNo, r.LoopNo, r.SystemNo, r.FolderName, r.HistoryName, string(r.Status)}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}

	if err := highlightMissing(f, sheet, len(trackerColumns), missingRows(records)); err != nil {
		return err
	}
	return f.SaveAs(t.path)
}

func missingRows(records []domain.Record) []int {
	var rows []int
	for i, r := range records {
		if r.Status == domain.StatusMissing {
			rows = append(rows, i+2) // +2: 1-based with header row
		}
	}
	return rows
}

func parseStatus(s string) domain.Status {
	switch s {
	case string(domain.StatusOK):
		return domain.StatusOK
	case string(domain.StatusMissing):
		return domain.StatusMissing
	default:
		return domain.StatusUnknown
	}
}
