// ABOUTME: Entry point wiring the browse model into a Bubble Tea program
// ABOUTME: Runs full-screen in the alternate buffer; blocks until exit

package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gielinor/osrsdex/internal/bestiary"
)

// Run starts the interactive bestiary browser and blocks until the user
// quits.
func Run(snap *bestiary.Snapshot) error {
	p := tea.NewProgram(NewBrowseModel(snap), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("bubble tea: %w", err)
	}
	return nil
}
