package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/keygate/keygate/internal/types"
)

// Run starts the interactive findings browser over a finished report.
func Run(r types.Report) error {
	m := NewModel(r)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
