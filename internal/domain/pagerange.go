package domain

import (
	"sort"
	"strconv"
	"strings"
)

// ParsePages parses a comma-separated page list ("3, 12,7") into sorted
// unique page numbers. Tokens that are not positive integers are returned in
// bad for the caller to report; they never abort the parse.
func ParsePages(s string) (pages []int, bad []string) {
	seen := make(map[int]bool)
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil || n < 1 {
			bad = append(bad, tok)
			continue
		}
		if !seen[n] {
			seen[n] = true
			pages = append(pages, n)
		}
	}
	sort.Ints(pages)
	return pages, bad
}

// FormatPages renders page numbers as the comma-separated cell value used in
// candidate tables
func FormatPages(pages []int) string {
	uniq := make([]int, 0, len(pages))
	seen := make(map[int]bool)
	for _, p := range pages {
		if !seen[p] {
			seen[p] = true
			uniq = append(uniq, p)
		}
	}
	sort.Ints(uniq)
	parts := make([]string, len(uniq))
	for i, p := range uniq {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}
