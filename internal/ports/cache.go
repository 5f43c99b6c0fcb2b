package ports

import "isobinder/internal/domain"

// MergeCache persists, per destination folder, the content fingerprint of
// the last successful merge. Entries are written only after a verified
// merged-output write, never speculatively.
type MergeCache interface {
	// Get returns the folder's entry. found is false when no entry exists.
	Get(folderPath string) (entry domain.MergeCacheEntry, found bool, err error)

	// Put overwrites the folder's entry.
	Put(folderPath string, entry domain.MergeCacheEntry) error
}
