// Package cache persists per-folder merge state as a hidden key/value
// sidecar file, one per destination folder.
package cache

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"isobinder/internal/domain"
	"isobinder/internal/ports"
)

// Sidecar implements ports.MergeCache on top of a .combined.cache file
// inside each folder
type Sidecar struct{}

var _ ports.MergeCache = (*Sidecar)(nil)

func NewSidecar() *Sidecar {
	return &Sidecar{}
}

// Get reads the folder's cache entry. A missing or unparsable sidecar reads
// as no entry, which simply forces the next merge.
func (s *Sidecar) Get(folderPath string) (domain.MergeCacheEntry, bool, error) {
	f, err := os.Open(filepath.Join(folderPath, domain.CacheSidecarName))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.MergeCacheEntry{}, false, nil
		}
		return domain.MergeCacheEntry{}, false, err
	}
	defer f.Close()

	var entry domain.MergeCacheEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "fingerprint":
			entry.Fingerprint = domain.Fingerprint(value)
		case "timestamp":
			if ts, err := time.Parse(time.RFC3339, value); err == nil {
				entry.Timestamp = ts
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.MergeCacheEntry{}, false, err
	}
	if entry.Fingerprint == "" {
		return domain.MergeCacheEntry{}, false, nil
	}
	return entry, true, nil
}

// Put overwrites the folder's cache entry atomically
func (s *Sidecar) Put(folderPath string, entry domain.MergeCacheEntry) error {
	path := filepath.Join(folderPath, domain.CacheSidecarName)
	content := fmt.Sprintf("fingerprint=%s\ntimestamp=%s\n",
		entry.Fingerprint, entry.Timestamp.Format(time.RFC3339))

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
