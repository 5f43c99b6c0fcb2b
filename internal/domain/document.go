package domain

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Well-known file names inside a destination folder
const (
	MergedFileName     = "Combined.pdf"
	CandidateTableName = "output.xlsx"
	CacheSidecarName   = ".combined.cache"
	BackupSuffix       = "_FRI"
)

// DocumentRole classifies a file inside a destination folder by its naming
// convention. The role is inferred, never stored.
type DocumentRole int

const (
	RoleOther  DocumentRole = iota
	RolePage                // extracted master page, numeric stem: "12.pdf"
	RoleSource              // source original with parenthesized ISO: "(ISO-1234-A).pdf"
	RoleBackup              // backup duplicate: "..._FRI.pdf"
	RoleMerged              // merged output: "Combined.pdf"
)

func (r DocumentRole) String() string {
	switch r {
	case RolePage:
		return "page"
	case RoleSource:
		return "source"
	case RoleBackup:
		return "backup"
	case RoleMerged:
		return "merged"
	default:
		return "other"
	}
}

var sourceNamePattern = regexp.MustCompile(`\(([^)]+)\)$`)

// Classify determines the role of a file from its name alone
func Classify(name string) DocumentRole {
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return RoleOther
	}
	if strings.EqualFold(name, MergedFileName) {
		return RoleMerged
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if strings.HasSuffix(strings.ToUpper(stem), BackupSuffix) {
		return RoleBackup
	}
	if _, err := strconv.Atoi(stem); err == nil {
		return RolePage
	}
	if sourceNamePattern.MatchString(stem) {
		return RoleSource
	}
	return RoleOther
}

// IsoKeyOf extracts the ISO key from a source-original file name. The key is
// the first two hyphen segments of the parenthesized part, so
// "(ISO-1234-A).pdf" yields "ISO-1234". Backup copies resolve to the key of
// the file they duplicate.
func IsoKeyOf(name string) (string, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if strings.HasSuffix(strings.ToUpper(stem), BackupSuffix) {
		stem = stem[:len(stem)-len(BackupSuffix)]
	}
	m := sourceNamePattern.FindStringSubmatch(stem)
	if m == nil {
		return "", false
	}
	segs := strings.Split(m[1], "-")
	if len(segs) < 2 {
		return strings.TrimSpace(m[1]), m[1] != ""
	}
	return strings.TrimSpace(segs[0] + "-" + segs[1]), true
}

// MergeCandidates selects and orders the files that participate in a merge.
// Precedence is load-bearing: numeric page extracts first (numerically), then
// source originals (lexicographically), then backup copies last. The first
// file carrying a given page wins the dedup pass, and the order here is the
// page order of the merged output.
func MergeCandidates(names []string) []string {
	var pages, sources, backups []string
	for _, n := range names {
		switch Classify(n) {
		case RolePage:
			pages = append(pages, n)
		case RoleSource:
			sources = append(sources, n)
		case RoleBackup:
			backups = append(backups, n)
		}
	}
	sort.Slice(pages, func(i, j int) bool {
		return pageNumberOf(pages[i]) < pageNumberOf(pages[j])
	})
	sort.Slice(sources, func(i, j int) bool {
		return strings.ToLower(sources[i]) < strings.ToLower(sources[j])
	})
	sort.Slice(backups, func(i, j int) bool {
		return strings.ToLower(backups[i]) < strings.ToLower(backups[j])
	})

	out := make([]string, 0, len(pages)+len(sources)+len(backups))
	out = append(out, pages...)
	out = append(out, sources...)
	out = append(out, backups...)
	return out
}

func pageNumberOf(name string) int {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	n, _ := strconv.Atoi(stem)
	return n
}

// BackupNameFor returns the backup duplicate name for a file,
// e.g. "(ISO-1234-A).pdf" -> "(ISO-1234-A)_FRI.pdf"
func BackupNameFor(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + BackupSuffix + ext
}

// PageFileName returns the file name for an extracted master page
func PageFileName(page int) string {
	return strconv.Itoa(page) + ".pdf"
}
