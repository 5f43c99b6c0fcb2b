package sourceindex

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"isobinder/internal/domain"
)

// SyncStats holds statistics from a sync operation
type SyncStats struct {
	Added    int
	Updated  int
	Deleted  int
	Scanned  int
	Duration time.Duration
}

// SyncFull rebuilds the index from a complete walk of the server store
func (idx *Index) SyncFull() (*SyncStats, error) {
	start := time.Now()
	stats := &SyncStats{}

	if _, err := idx.db.Exec(`DELETE FROM files`); err != nil {
		return nil, err
	}

	err := idx.walkStore(func(path string, info os.FileInfo) {
		if err := idx.upsertFile(path, info); err == nil {
			stats.Added++
		}
		stats.Scanned++
	})
	if err != nil {
		return stats, err
	}

	idx.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('last_sync_time', ?)`,
		time.Now().Unix())

	stats.Duration = time.Since(start)
	return stats, nil
}

// SyncIncremental re-stats only files modified since the last sync and
// drops index rows whose files vanished from the store
func (idx *Index) SyncIncremental() (*SyncStats, error) {
	start := time.Now()
	stats := &SyncStats{}

	var lastSyncUnix int64
	idx.db.QueryRow(`SELECT value FROM meta WHERE key = 'last_sync_time'`).Scan(&lastSyncUnix)

	existing := make(map[string]bool)
	rows, err := idx.db.Query(`SELECT path FROM files`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var path string
		rows.Scan(&path)
		existing[path] = true
	}
	rows.Close()

	seen := make(map[string]bool)
	err = idx.walkStore(func(path string, info os.FileInfo) {
		seen[path] = true
		stats.Scanned++

		if info.ModTime().Unix() <= lastSyncUnix && existing[path] {
			return
		}
		if err := idx.upsertFile(path, info); err != nil {
			return
		}
		if existing[path] {
			stats.Updated++
		} else {
			stats.Added++
		}
	})
	if err != nil {
		return stats, err
	}

	for path := range existing {
		if !seen[path] {
			if _, err := idx.db.Exec(`DELETE FROM files WHERE path = ?`, path); err == nil {
				stats.Deleted++
			}
		}
	}

	idx.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('last_sync_time', ?)`,
		time.Now().Unix())

	stats.Duration = time.Since(start)
	return stats, nil
}

// walkStore visits every PDF under the server store, subfolders included
func (idx *Index) walkStore(visit func(path string, info os.FileInfo)) error {
	return filepath.Walk(idx.serverPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != idx.serverPath {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(info.Name()), ".pdf") {
			visit(path, info)
		}
		return nil
	})
}

func (idx *Index) upsertFile(path string, info os.FileInfo) error {
	name := strings.ToLower(info.Name())
	isoKey := ""
	if key, ok := domain.IsoKeyOf(info.Name()); ok {
		isoKey = strings.ToLower(key)
	}
	_, err := idx.db.Exec(`
		INSERT OR REPLACE INTO files (path, name, iso_key, size, mtime)
		VALUES (?, ?, ?, ?, ?)
	`, path, name, isoKey, info.Size(), info.ModTime().Unix())
	return err
}
