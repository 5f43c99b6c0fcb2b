package ports

import "isobinder/internal/domain"

// EntityTable is the tracker workbook: the externally maintained list of
// records driving the run. Stages read it in full, mutate it in memory and
// write it back in full (last-writer-wins, single-operator use).
type EntityTable interface {
	// Load reads every row. A missing workbook or absent required column is
	// a SetupError/SchemaError for the caller to classify.
	Load() ([]domain.Record, error)

	// Save writes every row back, replacing the previous contents.
	Save([]domain.Record) error
}

// CandidateStore reads and writes the per-folder candidate table
// (which ISO keys a folder must retain and which master pages they map to).
type CandidateStore interface {
	// Load returns the folder's candidate rows. found is false when the
	// folder has no candidate table yet; that is not an error.
	Load(folderPath string) (rows []domain.Candidate, found bool, err error)

	// Save writes the folder's candidate table, replacing prior contents.
	Save(folderPath string, rows []domain.Candidate) error
}
