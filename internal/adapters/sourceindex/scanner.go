package sourceindex

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"isobinder/internal/application"
	"isobinder/internal/ports"
)

// Scanner locates source documents by scanning the server store directly.
// It needs no prior sync and serves as the fallback when the index is cold.
type Scanner struct {
	serverPath string
}

var _ ports.SourceLocator = (*Scanner)(nil)

func NewScanner(serverPath string) *Scanner {
	return &Scanner{serverPath: serverPath}
}

// Locate walks the store looking for a PDF whose name carries "(<isoNo>)".
// The lexicographically first match wins, like the indexed lookup.
func (s *Scanner) Locate(isoNo string) (string, error) {
	isoNo = strings.ToLower(strings.TrimSpace(isoNo))
	if isoNo == "" {
		return "", &application.LookupError{IsoNo: isoNo}
	}
	needle := "(" + isoNo + ")"

	var matches []string
	err := filepath.Walk(s.serverPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != s.serverPath {
				return filepath.SkipDir
			}
			return nil
		}
		name := strings.ToLower(info.Name())
		if strings.HasSuffix(name, ".pdf") && strings.Contains(name, needle) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", &application.LookupError{IsoNo: isoNo}
	}
	sort.Strings(matches)
	return matches[0], nil
}

// Fallback chains two locators: the secondary is consulted only when the
// primary reports a lookup miss
type Fallback struct {
	Primary   ports.SourceLocator
	Secondary ports.SourceLocator
}

var _ ports.SourceLocator = (*Fallback)(nil)

func (f *Fallback) Locate(isoNo string) (string, error) {
	path, err := f.Primary.Locate(isoNo)
	if err == nil {
		return path, nil
	}
	if errors.Is(err, application.ErrLookup) && f.Secondary != nil {
		return f.Secondary.Locate(isoNo)
	}
	return "", err
}
