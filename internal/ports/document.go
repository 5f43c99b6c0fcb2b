package ports

import "isobinder/internal/domain"

// Document is an open multi-page document
type Document interface {
	PageCount() int

	// PageFingerprint digests the canonical content of a page (1-based).
	// The digest is stable across re-saves that only touch binary metadata
	// and changes whenever the visible content changes.
	PageFingerprint(page int) (domain.Fingerprint, error)

	Close() error
}

// PageSelection names the pages of one file that survive deduplication,
// in output order
type PageSelection struct {
	Path  string
	Pages []int // 1-based, ascending within the file's own order
}

// DocumentEngine performs the page-level document operations the pipeline
// needs. The production implementation is PDF-backed; tests substitute an
// in-memory engine.
type DocumentEngine interface {
	Open(path string) (Document, error)

	PageCount(path string) (int, error)

	// ExtractPage writes a single page of src as a standalone document
	ExtractPage(src string, page int, outPath string) error

	// Merge assembles the selected pages, in selection order, into outPath.
	// Callers write to a temporary path and rename on success.
	Merge(parts []PageSelection, outPath string) error
}
