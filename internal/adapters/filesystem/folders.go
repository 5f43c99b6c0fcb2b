package filesystem

import (
	"os"
	"path/filepath"
)

// MergeInto copies every file of srcDir into dstDir with SafeCopy and then
// tries to remove srcDir. When files remain (unresolved conflicts or copy
// failures) removed is false and srcDir is left for operator review; that is
// reported, not fatal. firstErr carries the first copy failure, if any.
func MergeInto(srcDir, dstDir string) (removed bool, firstErr error) {
	names, err := ListFiles(srcDir)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if _, err := SafeCopy(filepath.Join(srcDir, name), filepath.Join(dstDir, name)); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := os.Remove(filepath.Join(srcDir, name)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	// Only succeeds when srcDir ended up empty.
	if err := os.Remove(srcDir); err != nil {
		return false, firstErr
	}
	return true, firstErr
}

// RemoveIfEmpty deletes dir when it contains no entries
func RemoveIfEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	if len(entries) > 0 {
		return false, nil
	}
	if err := os.Remove(dir); err != nil {
		return false, err
	}
	return true, nil
}
