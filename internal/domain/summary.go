package domain

import "time"

// StageStats counts the outcome of one pipeline stage
type StageStats struct {
	Name      string
	Processed int
	Skipped   int
	Failed    int
}

// RunSummary is the operator-facing outcome of a full pipeline run
type RunSummary struct {
	Started  time.Time
	Duration time.Duration
	OK       int
	Missing  int
	Issues   []string // residual folders, unresolved conflicts, empty folders
	Stages   []StageStats
}

// AddIssue records an open issue for operator review
func (s *RunSummary) AddIssue(msg string) {
	s.Issues = append(s.Issues, msg)
}

// Stage returns the stats slot for a stage, creating it on first use
func (s *RunSummary) Stage(name string) *StageStats {
	for i := range s.Stages {
		if s.Stages[i].Name == name {
			return &s.Stages[i]
		}
	}
	s.Stages = append(s.Stages, StageStats{Name: name})
	return &s.Stages[len(s.Stages)-1]
}

// MergeCacheEntry records that a folder's merged output is up to date with
// the fingerprint of its candidate source files
type MergeCacheEntry struct {
	Fingerprint Fingerprint
	Timestamp   time.Time
}
