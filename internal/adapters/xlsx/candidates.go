package xlsx

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"isobinder/internal/application"
	"isobinder/internal/domain"
	"isobinder/internal/ports"
)

// Candidate table column headers
const (
	colIsoList  = "ISO LIST"
	colPdfPage  = "PDF PAGE"
	colCdStatus = "ISO Status"
)

var candidateColumns = []string{colIsoList, colPdfPage, colCdStatus}

// CandidateStore implements ports.CandidateStore over the output.xlsx
// workbook kept in each destination folder
type CandidateStore struct{}

var _ ports.CandidateStore = (*CandidateStore)(nil)

func NewCandidateStore() *CandidateStore {
	return &CandidateStore{}
}

// Load reads the folder's candidate rows. Unparsable page tokens are dropped
// from the row and reported through err while the remaining rows are still
// returned, so one hand-edited cell never discards the whole table.
func (c *CandidateStore) Load(folderPath string) ([]domain.Candidate, bool, error) {
	path := filepath.Join(folderPath, domain.CandidateTableName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, false, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, true, fmt.Errorf("open candidate table: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, true, fmt.Errorf("read candidate table: %w", err)
	}
	if len(rows) == 0 {
		return nil, true, nil
	}

	s, err := schemaOf(rows[0], []string{colIsoList, colPdfPage}, domain.CandidateTableName)
	if err != nil {
		return nil, true, err
	}

	var candidates []domain.Candidate
	var badErr error
	for _, row := range rows[1:] {
		key := s.cell(row, colIsoList)
		if key == "" {
			continue
		}
		pages, bad := domain.ParsePages(s.cell(row, colPdfPage))
		if len(bad) > 0 && badErr == nil {
			badErr = &application.SchemaError{
				Kind:   application.BadValue,
				Table:  domain.CandidateTableName,
				Column: colPdfPage,
				Value:  bad[0],
			}
		}
		candidates = append(candidates, domain.Candidate{
			IsoKey: key,
			Pages:  pages,
			Status: parseStatus(s.cell(row, colCdStatus)),
		})
	}
	return candidates, true, badErr
}

// Save rewrites the folder's candidate table and paints MISSING rows red
func (c *CandidateStore) Save(folderPath string, rows []domain.Candidate) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := writeHeader(f, sheet, candidateColumns); err != nil {
		return err
	}
	var missing []int
	for i, r := range rows {
		values := []string{r.IsoKey, domain.FormatPages(r.Pages), string(r.Status)}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
		if r.Status == domain.StatusMissing {
			missing = append(missing, i+2)
		}
	}
	if err := highlightMissing(f, sheet, len(candidateColumns), missing); err != nil {
		return err
	}
	return f.SaveAs(filepath.Join(folderPath, domain.CandidateTableName))
}
