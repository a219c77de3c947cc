// ABOUTME: Terminal markdown rendering for the wiki subcommand
// ABOUTME: Wraps glamour with auto styling; falls back to raw text on error

package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// RenderMarkdown returns the terminal-styled rendering of md wrapped to
// width. Renderer failures fall back to the raw text.
func RenderMarkdown(md string, width int) string {
	if md == "" {
		return ""
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n ")
}
