// Package masterindex parses the master reference index: a text file where
// each line names an indexed document followed by a master-PDF page number.
package masterindex

import (
	"bufio"
	"os"
	"sort"
	"strconv"
	"strings"

	"isobinder/internal/ports"
)

// Index implements ports.MasterIndex over the parsed reference file
type Index struct {
	// pages per lowercased indexed name
	pages map[string][]int
}

var _ ports.MasterIndex = (*Index)(nil)

// Load reads and parses the index file. Lines with fewer than two fields or
// a non-numeric page are skipped; the index format is operator-maintained
// and partially malformed files are the norm.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	idx := &Index{pages: make(map[string][]int)}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		page, err := strconv.Atoi(fields[1])
		if err != nil || page < 1 {
			continue
		}
		name := strings.ToLower(fields[0])
		idx.pages[name] = append(idx.pages[name], page)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return idx, nil
}

// PagesFor aggregates the pages of every indexed name containing the key,
// case-insensitively, as sorted unique page numbers
func (i *Index) PagesFor(isoKey string) []int {
	key := strings.ToLower(strings.TrimSpace(isoKey))
	if key == "" {
		return nil
	}
	seen := make(map[int]bool)
	var pages []int
	for name, ps := range i.pages {
		if !strings.Contains(name, key) {
			continue
		}
		for _, p := range ps {
			if !seen[p] {
				seen[p] = true
				pages = append(pages, p)
			}
		}
	}
	sort.Ints(pages)
	return pages
}

// Size returns the number of distinct indexed names
func (i *Index) Size() int {
	return len(i.pages)
}
