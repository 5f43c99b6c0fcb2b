package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for the four failure classes. Only ErrSetup aborts a run;
// the rest are absorbed at the unit (row/file/folder) boundary.
var (
	ErrSetup  = errors.New("setup failed")
	ErrLookup = errors.New("source document not found")
	ErrIO     = errors.New("io failure")
	ErrFormat = errors.New("bad format")
)

// SetupError marks a missing or unreadable required input. It is the only
// error class that aborts the run, and it does so before stage 1 mutates
// anything.
type SetupError struct {
	Path   string
	Reason string
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup: %s: %s", e.Path, e.Reason)
}

func (e *SetupError) Is(target error) bool {
	return target == ErrSetup
}

// LookupError marks a source document that could not be located on the
// server store. The owning record is flagged MISSING and processing goes on.
type LookupError struct {
	IsoNo string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("source document %s not found on server store", e.IsoNo)
}

func (e *LookupError) Is(target error) bool {
	return target == ErrLookup
}

// CopyError marks a failed copy or write for a single file
type CopyError struct {
	Src string
	Dst string
	Err error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy %s -> %s: %v", e.Src, e.Dst, e.Err)
}

func (e *CopyError) Is(target error) bool {
	return target == ErrIO
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// SchemaErrorKind distinguishes the two table-format failure variants
type SchemaErrorKind int

const (
	MissingColumn SchemaErrorKind = iota
	BadValue
)

// SchemaError marks a malformed table: a required column that is absent, or
// a cell value that does not parse. Loaders validate the whole schema once;
// every consumer sees the same tagged variant.
type SchemaError struct {
	Kind   SchemaErrorKind
	Table  string
	Column string
	Value  string
}

func (e *SchemaError) Error() string {
	if e.Kind == MissingColumn {
		return fmt.Sprintf("%s: missing column %q", e.Table, e.Column)
	}
	return fmt.Sprintf("%s: bad value %q in column %q", e.Table, e.Value, e.Column)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrFormat
}
