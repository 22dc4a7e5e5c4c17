package tui

import (
	"github.com/atotto/clipboard"
)

// copySelected puts the selected finding's JSON on the system clipboard and
// returns a status line for the footer.
func (m *Model) copySelected() string {
	f := m.selected()
	if f == nil {
		return " nothing to copy "
	}
	if err := clipboard.WriteAll(findingJSON(*f, false)); err != nil {
		return " clipboard unavailable "
	}
	return " copied " + f.Category + " " + f.Target + " "
}
