package stages

import (
	"context"
	"fmt"
	"os"
	"time"

	"isobinder/internal/application"
	"isobinder/internal/domain"
)

// stage is one step of the pipeline
type stage interface {
	Execute(ctx context.Context) error
}

// Pipeline runs the seven stages in strict order over one destination tree.
// Per-unit failures inside a stage are absorbed by the stage itself; a
// stage-level error is logged and the remaining stages still run. Only a
// failed preflight aborts the run, and it does so before anything mutates.
type Pipeline struct {
	rt *Runtime
}

func NewPipeline(rt *Runtime) *Pipeline {
	return &Pipeline{rt: rt}
}

// Preflight validates the required global inputs without mutating anything.
// Any failure here is a SetupError: the run must not start.
func (p *Pipeline) Preflight() error {
	info, err := os.Stat(p.rt.Dest)
	if err != nil || !info.IsDir() {
		return &application.SetupError{Path: p.rt.Dest, Reason: "destination root is not a readable directory"}
	}
	if _, err := p.rt.Tracker.Load(); err != nil {
		return &application.SetupError{Path: "tracker", Reason: err.Error()}
	}
	if n, err := p.rt.Docs.PageCount(p.rt.MasterPDF); err != nil || n < 1 {
		return &application.SetupError{Path: p.rt.MasterPDF, Reason: "master document cannot be read"}
	}
	return nil
}

// Run executes the full pipeline and returns the run summary
func (p *Pipeline) Run(ctx context.Context) (*domain.RunSummary, error) {
	if p.rt.Summary == nil {
		p.rt.Summary = &domain.RunSummary{}
	}
	p.rt.Summary.Started = time.Now()

	if err := p.Preflight(); err != nil {
		return p.rt.Summary, err
	}

	stages := []struct {
		name string
		s    stage
	}{
		{stageReconcile, NewReconcile(p.rt)},
		{stageCatalog, NewCatalog(p.rt)},
		{stageExtract, NewExtract(p.rt)},
		{stageBackup, NewBackup(p.rt)},
		{stageCleanup, NewCleanup(p.rt)},
		{stageMerge, NewMerge(p.rt)},
		{stageVerify, NewVerify(p.rt)},
	}

	for _, st := range stages {
		p.rt.Logs.Action.Info().Str("stage", st.name).Msg("stage start")
		start := time.Now()
		if err := st.s.Execute(ctx); err != nil {
			if ctx.Err() != nil {
				return p.rt.Summary, ctx.Err()
			}
			// A stage-level failure is reported but never blocks the rest:
			// later stages are idempotent against whatever state remains.
			p.rt.fail(st.name, "stage", err)
		}
		p.rt.Logs.Action.Info().Str("stage", st.name).Dur("took", time.Since(start)).Msg("stage done")
	}

	p.rt.Summary.Duration = time.Since(p.rt.Summary.Started)
	p.logSummary()
	return p.rt.Summary, nil
}

func (p *Pipeline) logSummary() {
	s := p.rt.Summary
	p.rt.Logs.Action.Info().
		Int("ok", s.OK).
		Int("missing", s.Missing).
		Int("issues", len(s.Issues)).
		Dur("took", s.Duration).
		Msg("run complete")
	for _, issue := range s.Issues {
		p.rt.Logs.Action.Warn().Msg(issue)
	}
}

// Describe returns a short operator-facing summary line
func Describe(s *domain.RunSummary) string {
	return fmt.Sprintf("%d OK, %d MISSING, %d open issue(s) in %s",
		s.OK, s.Missing, len(s.Issues), s.Duration.Round(time.Millisecond))
}
