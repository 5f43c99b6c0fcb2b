package domain

import "strings"

// Status reflects whether a record's source document was found on the store
type Status string

const (
	StatusUnknown Status = ""
	StatusOK      Status = "OK"
	StatusMissing Status = "MISSING"
)

// Record represents one row of the tracker workbook: a loop/system pair that
// owns exactly one destination folder and references one source ISO document.
type Record struct {
	IsoNo       string // source document number, e.g. "ISO-1234"
	LoopNo      string
	SystemNo    string
	FolderName  string // desired folder name, recomputed every run
	HistoryName string // folder name last confirmed on disk
	Status      Status
}

// FolderNameFor derives the destination folder name for a loop/system pair.
// The derivation is deterministic; reconciliation relies on it.
func FolderNameFor(loopNo, systemNo string) string {
	return strings.TrimSpace(loopNo) + "_" + strings.TrimSpace(systemNo)
}

// RecomputeFolderName refreshes the desired folder name from the key pair
func (r *Record) RecomputeFolderName() {
	r.FolderName = FolderNameFor(r.LoopNo, r.SystemNo)
}

// Identified reports whether the record carries both key parts
func (r *Record) Identified() bool {
	return strings.TrimSpace(r.LoopNo) != "" && strings.TrimSpace(r.SystemNo) != ""
}

// Candidate is one row of a folder's candidate table: an ISO key that the
// folder must retain, plus the master-document pages referenced for it.
type Candidate struct {
	IsoKey string
	Pages  []int
	Status Status
}
