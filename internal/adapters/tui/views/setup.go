package views

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"isobinder/internal/adapters/tui/styles"
	"isobinder/internal/config"
)

// field order in the setup form
const (
	fieldTracker = iota
	fieldServer
	fieldMasterIndex
	fieldMasterPDF
	fieldDest
	fieldCount
)

// StartRunMsg is emitted when the operator submits a valid set of paths
type StartRunMsg struct {
	Paths config.Paths
}

// QuitMsg is emitted when the operator backs out of the form
type QuitMsg struct{}

// SetupModel collects the five run paths. Fields are prefilled from the
// environment so a repeat run is a single enter.
type SetupModel struct {
	form   *InputForm
	errMsg string
	width  int
}

func NewSetupModel(initial config.Paths) *SetupModel {
	return &SetupModel{
		form: NewInputForm(
			NewInputField("Tracker workbook", `C:\work\tracker.xlsx`, initial.Tracker),
			NewInputField("Server store root", `\\server\iso-store`, initial.Server),
			NewInputField("Master index file", `C:\work\master-index.txt`, initial.MasterIndex),
			NewInputField("Master PDF", `C:\work\master.pdf`, initial.MasterPDF),
			NewInputField("Destination root", `C:\work\consolidated`, initial.Dest),
		),
	}
}

func (m *SetupModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m *SetupModel) SetSize(width, _ int) {
	m.width = width
}

func (m *SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.form.Keys.Cancel):
			return m, func() tea.Msg { return QuitMsg{} }
		case key.Matches(msg, m.form.Keys.Submit):
			return m, m.submit()
		}
	}

	_, cmd := m.form.Update(msg)
	return m, cmd
}

func (m *SetupModel) submit() tea.Cmd {
	paths := config.Paths{
		Tracker:     m.form.Value(fieldTracker),
		Server:      m.form.Value(fieldServer),
		MasterIndex: m.form.Value(fieldMasterIndex),
		MasterPDF:   m.form.Value(fieldMasterPDF),
		Dest:        m.form.Value(fieldDest),
	}
	if !paths.Complete() {
		m.errMsg = "all five paths are required"
		return nil
	}
	// The tracker may not exist yet; it gets bootstrapped on first run.
	for _, p := range []string{paths.Server, paths.MasterIndex, paths.MasterPDF, paths.Dest} {
		if _, err := os.Stat(p); err != nil {
			m.errMsg = fmt.Sprintf("not found: %s", p)
			return nil
		}
	}
	m.errMsg = ""
	return func() tea.Msg { return StartRunMsg{Paths: paths} }
}

func (m *SetupModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("isobinder"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render("consolidate source documents and master pages per loop/system folder"))
	b.WriteString("\n\n")

	for i := 0; i < fieldCount; i++ {
		b.WriteString(m.form.RenderField(i))
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorMsg.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.form.RenderHelp("run"))
	return styles.App.Render(b.String())
}
