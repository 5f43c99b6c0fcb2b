package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"isobinder/internal/adapters/tui"
	"isobinder/internal/config"
	"isobinder/internal/runner"
)

func main() {
	app := tui.NewApp(runner.Run, config.FromEnv())

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
