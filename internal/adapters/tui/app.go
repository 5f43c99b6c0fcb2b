// Package tui is the interactive front end: a path form feeding one full
// pipeline run, with the summary shown at the end. The heavy lifting stays
// in the application layer; the Runner is injected.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"isobinder/internal/adapters/tui/views"
	"isobinder/internal/config"
	"isobinder/internal/domain"
)

// Runner executes one full pipeline run for the given paths
type Runner func(ctx context.Context, paths config.Paths) (*domain.RunSummary, error)

// ViewState represents the current view
type ViewState int

const (
	ViewSetup ViewState = iota
	ViewRun
)

// App is the main TUI application model
type App struct {
	runner Runner

	state ViewState
	setup *views.SetupModel
	run   *views.RunModel

	width  int
	height int
}

// NewApp creates the application with fields prefilled from initial
func NewApp(runner Runner, initial config.Paths) *App {
	return &App{
		runner: runner,
		state:  ViewSetup,
		setup:  views.NewSetupModel(initial),
		run:    views.NewRunModel(),
	}
}

func (a *App) Init() tea.Cmd {
	return a.setup.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.setup.SetSize(msg.Width, msg.Height)
		return a, nil

	case views.QuitMsg:
		return a, tea.Quit

	case views.StartRunMsg:
		a.state = ViewRun
		return a, tea.Batch(a.run.Init(), a.startRun(msg.Paths))

	case views.RunDoneMsg:
		_, cmd := a.run.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if a.state == ViewRun && msg.String() == "esc" {
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch a.state {
	case ViewSetup:
		_, cmd = a.setup.Update(msg)
	case ViewRun:
		_, cmd = a.run.Update(msg)
	}
	return a, cmd
}

func (a *App) View() string {
	switch a.state {
	case ViewRun:
		return a.run.View()
	default:
		return a.setup.View()
	}
}

func (a *App) startRun(paths config.Paths) tea.Cmd {
	return func() tea.Msg {
		summary, err := a.runner(context.Background(), paths)
		return views.RunDoneMsg{Summary: summary, Err: err}
	}
}
