// Package sourceindex maintains a persistent SQLite index of the server
// store, so that locating a record's source document does not rescan the
// whole store on every run.
package sourceindex

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"isobinder/internal/application"
	"isobinder/internal/ports"
)

const schemaVersion = "1"

// Index implements ports.SourceLocator backed by SQLite
type Index struct {
	db         *sql.DB
	serverPath string
	dbPath     string
}

var _ ports.SourceLocator = (*Index)(nil)

func NewIndex() *Index {
	return &Index{}
}

// Open initializes the index for the given server store path
func (idx *Index) Open(serverPath string) error {
	idx.serverPath = serverPath
	idx.dbPath = databasePath(serverPath)

	if err := os.MkdirAll(filepath.Dir(idx.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	// WAL mode keeps sync writes cheap; single-operator access only.
	db, err := sql.Open("sqlite", idx.dbPath+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	idx.db = db

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS files (
			path TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			iso_key TEXT,
			size INTEGER NOT NULL,
			mtime INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_files_iso_key ON files(iso_key);
		CREATE INDEX IF NOT EXISTS idx_files_name ON files(name);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	if err := idx.updateMeta(); err != nil {
		db.Close()
		return fmt.Errorf("failed to update metadata: %w", err)
	}
	return nil
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// NeedsFullRebuild returns true when the schema changed or the index was
// built for a different server path
func (idx *Index) NeedsFullRebuild() bool {
	var version, pathHash string

	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'server_path_hash'").Scan(&pathHash)

	return version != schemaVersion || pathHash != hashServerPath(idx.serverPath)
}

// Locate resolves an ISO number to a source document path by the
// parenthesized-number naming convention, e.g. "... (iso-1234-a).pdf".
// Several matches resolve to the lexicographically first path, which keeps
// the resolution deterministic across runs.
func (idx *Index) Locate(isoNo string) (string, error) {
	isoNo = strings.ToLower(strings.TrimSpace(isoNo))
	if isoNo == "" {
		return "", &application.LookupError{IsoNo: isoNo}
	}

	var path string
	err := idx.db.QueryRow(`
		SELECT path FROM files
		WHERE name LIKE '%(' || ? || ')%'
		ORDER BY path LIMIT 1
	`, isoNo).Scan(&path)
	if err == sql.ErrNoRows {
		return "", &application.LookupError{IsoNo: isoNo}
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// Empty reports whether the index holds no files yet
func (idx *Index) Empty() (bool, error) {
	var n int
	if err := idx.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

func (idx *Index) updateMeta() error {
	_, err := idx.db.Exec(`
		INSERT OR REPLACE INTO meta (key, value) VALUES
			('schema_version', ?),
			('server_path_hash', ?)
	`, schemaVersion, hashServerPath(idx.serverPath))
	return err
}

// databasePath returns the SQLite file location under the XDG data directory
func databasePath(serverPath string) string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "isobinder", hashServerPath(serverPath)+".db")
}

// hashServerPath returns a short hash of the server store path
func hashServerPath(serverPath string) string {
	h := sha256.Sum256([]byte(serverPath))
	return hex.EncodeToString(h[:8])
}
