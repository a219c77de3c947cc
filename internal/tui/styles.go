// ABOUTME: Prebuilt lipgloss styles shared by the browse views
// ABOUTME: Fixed palette built once; View calls must not rebuild styles

package tui

import "github.com/charmbracelet/lipgloss"

// Palette holds the prebuilt styles every view shares.
type Palette struct {
	Title     lipgloss.Style
	Header    lipgloss.Style
	Selection lipgloss.Style
	Dim       lipgloss.Style
	Accent    lipgloss.Style
	Error     lipgloss.Style
}

var styles = Palette{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("178")),
	Header:    lipgloss.NewStyle().Bold(true).Underline(true),
	Selection: lipgloss.NewStyle().Reverse(true),
	Dim:       lipgloss.NewStyle().Faint(true),
	Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
}

// Styles returns the shared palette.
func Styles() Palette { return styles }
