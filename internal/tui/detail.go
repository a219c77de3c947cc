// ABOUTME: Drop-detail pane rendering for the selected bestiary monster
// ABOUTME: Pure function of the monster and pane dimensions; no model state

package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/gielinor/osrsdex/internal/bestiary"
	"github.com/gielinor/osrsdex/internal/markup"
)

// detailView renders the selected monster's stats and drop list, best odds
// first, capped to the pane height.
func detailView(m *bestiary.Monster, w, rows int) string {
	s := Styles()
	if m == nil {
		return s.Dim.Render("no monster selected")
	}

	var b strings.Builder
	b.WriteString(s.Header.Render(m.Name))
	b.WriteByte('\n')
	b.WriteString(s.Dim.Render(fmt.Sprintf("combat %d   hitpoints %d   id %d", m.CombatLevel, m.Hitpoints, m.ID)))
	b.WriteString("\n\n")

	if len(m.Drops) == 0 {
		b.WriteString(s.Dim.Render("no recorded drops"))
		return b.String()
	}

	drops := make([]bestiary.Drop, len(m.Drops))
	copy(drops, m.Drops)
	sort.SliceStable(drops, func(i, j int) bool { return drops[i].Rarity > drops[j].Rarity })

	shown := rows - 3
	if shown < 1 {
		shown = 1
	}
	if shown > len(drops) {
		shown = len(drops)
	}

	for _, d := range drops[:shown] {
		name := d.Name
		if d.Noted {
			name += " (noted)"
		}
		line := fmt.Sprintf("%-10s %6s  %s", markup.Fraction(d.Rarity), d.Quantity, name)
		b.WriteString(runewidth.Truncate(line, w, "…"))
		b.WriteByte('\n')
	}
	if rest := len(drops) - shown; rest > 0 {
		b.WriteString(s.Dim.Render(fmt.Sprintf("and %d more", rest)))
	}
	return b.String()
}
