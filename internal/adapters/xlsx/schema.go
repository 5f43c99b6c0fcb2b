// Package xlsx stores the tracker and per-folder candidate tables as Excel
// workbooks, the format the surrounding workflow already uses.
package xlsx

import (
	"strings"

	"isobinder/internal/application"
)

// schema maps required column headers to their zero-based indexes. Each
// table is validated once on load; a missing header surfaces as a tagged
// SchemaError instead of ad-hoc per-function checks.
type schema map[string]int

func schemaOf(header []string, required []string, table string) (schema, error) {
	s := make(schema, len(required))
	for i, h := range header {
		s[normalize(h)] = i
	}
	for _, col := range required {
		if _, ok := s[normalize(col)]; !ok {
			return nil, &application.SchemaError{Kind: application.MissingColumn, Table: table, Column: col}
		}
	}
	return s, nil
}

func (s schema) cell(row []string, column string) string {
	idx, ok := s[normalize(column)]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func normalize(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
