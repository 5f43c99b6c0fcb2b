package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"isobinder/internal/adapters/tui/styles"
	"isobinder/internal/domain"
)

// RunDoneMsg carries the outcome of a pipeline run back into the UI
type RunDoneMsg struct {
	Summary *domain.RunSummary
	Err     error
}

// RunModel shows a spinner while the pipeline runs and the summary after
type RunModel struct {
	spin    spinner.Model
	done    bool
	summary *domain.RunSummary
	err     error
}

func NewRunModel() *RunModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.StageName
	return &RunModel{spin: s}
}

func (m *RunModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m *RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RunDoneMsg:
		m.done = true
		m.summary = msg.Summary
		m.err = msg.Err
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *RunModel) View() string {
	var b strings.Builder

	if !m.done {
		b.WriteString(m.spin.View())
		b.WriteString(" running, progress is in the destination's isobinder.log")
		return styles.App.Render(b.String())
	}

	if m.err != nil {
		b.WriteString(styles.ErrorMsg.Render("run aborted: " + m.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(styles.HelpKey.Render("esc") + " " + styles.HelpDesc.Render("quit"))
		return styles.App.Render(b.String())
	}

	s := m.summary
	b.WriteString(styles.Success.Render("run complete"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s OK   %s MISSING\n",
		styles.Success.Render(fmt.Sprint(s.OK)),
		styles.WarningMsg.Render(fmt.Sprint(s.Missing))))
	b.WriteString(styles.MutedText.Render(fmt.Sprintf("took %s", s.Duration.Round(time.Millisecond))))
	b.WriteString("\n")

	for _, st := range s.Stages {
		b.WriteString(fmt.Sprintf("\n%s  %d processed, %d skipped, %d failed",
			styles.StageName.Render(fmt.Sprintf("%-10s", st.Name)),
			st.Processed, st.Skipped, st.Failed))
	}
	b.WriteString("\n")

	if len(s.Issues) > 0 {
		b.WriteString("\n" + styles.WarningMsg.Render("open issues:") + "\n")
		for _, issue := range s.Issues {
			b.WriteString("  " + issue + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpKey.Render("esc") + " " + styles.HelpDesc.Render("quit"))
	return styles.App.Render(b.String())
}
