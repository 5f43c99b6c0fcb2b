package config

import "os"

// Paths holds the five run inputs
type Paths struct {
	Tracker     string // tracker workbook (the task list)
	Server      string // server store root with the source documents
	MasterIndex string // text index mapping document codes to master pages
	MasterPDF   string // master document pages are extracted from
	Dest        string // destination root receiving the folder tree
}

// FromEnv returns the run paths from ISOBINDER_* env vars; unset values
// stay empty and must come from flags or the interactive form.
func FromEnv() Paths {
	return Paths{
		Tracker:     os.Getenv("ISOBINDER_TRACKER"),
		Server:      os.Getenv("ISOBINDER_SERVER"),
		MasterIndex: os.Getenv("ISOBINDER_MASTER_INDEX"),
		MasterPDF:   os.Getenv("ISOBINDER_MASTER_PDF"),
		Dest:        os.Getenv("ISOBINDER_DEST"),
	}
}

// Complete reports whether every path is set
func (p Paths) Complete() bool {
	return p.Tracker != "" && p.Server != "" && p.MasterIndex != "" && p.MasterPDF != "" && p.Dest != ""
}
