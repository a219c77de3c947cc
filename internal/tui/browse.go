// ABOUTME: BrowseModel is the Bubble Tea root for the interactive bestiary browser
// ABOUTME: Fuzzy-filterable monster list on the left, live drop detail on the right

package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/gielinor/osrsdex/internal/bestiary"
)

const minListWidth = 24

// BrowseModel is a filterable monster list with a drop-detail pane that
// follows the selection. Implements tea.Model with value semantics.
type BrowseModel struct {
	snap      *bestiary.Snapshot
	names     []string // sorted display names
	visible   []string
	selected  int
	scrollOff int
	filter    string
	width     int
	height    int
}

// NewBrowseModel creates a browser over the given snapshot.
func NewBrowseModel(snap *bestiary.Snapshot) BrowseModel {
	names := snap.Names()
	sort.Strings(names)

	m := BrowseModel{
		snap:   snap,
		names:  names,
		width:  80,
		height: 24,
	}
	m.applyFilter()
	return m
}

// Init returns nil; no commands needed at startup.
func (m BrowseModel) Init() tea.Cmd {
	return nil
}

// Update handles key and window-size messages. Typing filters the list;
// escape clears the filter first and quits from an empty one.
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			if m.filter == "" {
				return m, tea.Quit
			}
			m.filter = ""
			m.resetFilter()
		case tea.KeyRunes:
			if len(msg.Runes) > 0 {
				m.filter += string(msg.Runes)
				m.resetFilter()
			}
		case tea.KeyBackspace:
			if len(m.filter) > 0 {
				m.filter = m.filter[:len(m.filter)-1]
				m.resetFilter()
			}
		case tea.KeyUp:
			m.moveUp()
		case tea.KeyDown:
			m.moveDown()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.adjustScroll()
	}
	return m, nil
}

// View renders the title, the list pane, the detail pane, and the key hints.
func (m BrowseModel) View() string {
	s := Styles()

	title := s.Title.Render(fmt.Sprintf("osrsdex bestiary (%d monsters)", m.snap.Count()))
	footer := s.Dim.Render("type to filter   up/down select   esc clear   ctrl+c quit")

	listW := m.width / 3
	if listW < minListWidth {
		listW = minListWidth
	}
	rows := m.listHeight()

	left := lipgloss.NewStyle().Width(listW).Render(m.renderList(listW, rows))
	right := lipgloss.NewStyle().PaddingLeft(2).Render(detailView(m.Selected(), m.width-listW-2, rows))
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	return title + "\n" + body + "\n" + footer
}

// Selected returns the monster under the cursor, or nil when the filter
// matches nothing.
func (m BrowseModel) Selected() *bestiary.Monster {
	if len(m.visible) == 0 {
		return nil
	}
	return m.snap.ByName(m.visible[m.selected])
}

// VisibleNames returns the currently filtered names.
func (m BrowseModel) VisibleNames() []string {
	return m.visible
}

func (m BrowseModel) renderList(w, rows int) string {
	s := Styles()
	var b strings.Builder

	prompt := "> " + m.filter
	if m.filter == "" {
		prompt = s.Dim.Render("> type to filter")
	}
	b.WriteString(prompt)

	if len(m.visible) == 0 {
		b.WriteByte('\n')
		b.WriteString(s.Dim.Render("  no matches"))
		return b.String()
	}

	end := min(m.scrollOff+rows, len(m.visible))
	for i := m.scrollOff; i < end; i++ {
		line := runewidth.Truncate("  "+m.visible[i], w, "…")
		if i == m.selected {
			line = s.Selection.Render(line)
		}
		b.WriteByte('\n')
		b.WriteString(line)
	}
	return b.String()
}

// listHeight is the rows available for list entries after the title, the
// filter prompt, and the footer.
func (m BrowseModel) listHeight() int {
	h := m.height - 3
	if h < 1 {
		return 1
	}
	return h
}

func (m *BrowseModel) resetFilter() {
	m.selected = 0
	m.scrollOff = 0
	m.applyFilter()
}

func (m *BrowseModel) moveUp() {
	if m.selected > 0 {
		m.selected--
		m.adjustScroll()
	}
}

func (m *BrowseModel) moveDown() {
	if m.selected < len(m.visible)-1 {
		m.selected++
		m.adjustScroll()
	}
}

func (m *BrowseModel) adjustScroll() {
	rows := m.listHeight()
	if m.selected < m.scrollOff {
		m.scrollOff = m.selected
	}
	if m.selected >= m.scrollOff+rows {
		m.scrollOff = m.selected - rows + 1
	}
}

func (m *BrowseModel) applyFilter() {
	if m.filter == "" {
		m.visible = make([]string, len(m.names))
		copy(m.visible, m.names)
		return
	}

	matches := fuzzy.Find(m.filter, m.names)
	m.visible = make([]string, len(matches))
	for i, match := range matches {
		m.visible[i] = match.Str
	}
}
