// Package runlog owns the two per-run log sinks: the action log with every
// timestamped operation, and the error-only report. Both live in the
// destination root and are truncated when a run starts. A Logs value is
// passed explicitly into every stage; there is no ambient logger.
package runlog

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const (
	ActionLogName   = "isobinder.log"
	ErrorReportName = "error_report.log"
)

// Logs bundles the run's log sinks
type Logs struct {
	Action zerolog.Logger
	Report zerolog.Logger

	files []*os.File
}

// Open truncates and opens both sinks in dir. The action log is mirrored to
// stderr so the operator sees progress without tailing the file.
func Open(dir string) (*Logs, error) {
	actionFile, err := os.Create(filepath.Join(dir, ActionLogName))
	if err != nil {
		return nil, err
	}
	reportFile, err := os.Create(filepath.Join(dir, ErrorReportName))
	if err != nil {
		actionFile.Close()
		return nil, err
	}

	return &Logs{
		Action: newLogger(io.MultiWriter(actionFile, os.Stderr)),
		Report: newLogger(reportFile).Level(zerolog.ErrorLevel),
		files:  []*os.File{actionFile, reportFile},
	}, nil
}

// Discard returns log sinks that drop everything, for tests
func Discard() *Logs {
	return &Logs{
		Action: zerolog.Nop(),
		Report: zerolog.Nop(),
	}
}

// Failure records a recoverable per-unit failure in both sinks
func (l *Logs) Failure(stage, unit string, err error) {
	l.Action.Error().Str("stage", stage).Str("unit", unit).Err(err).Msg("unit failed")
	l.Report.Error().Str("stage", stage).Str("unit", unit).Err(err).Msg("unit failed")
}

// Close flushes and closes the underlying files
func (l *Logs) Close() error {
	var firstErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newLogger(w io.Writer) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: "2006-01-02 15:04:05",
	}
	return zerolog.New(cw).With().Timestamp().Logger()
}
