// ABOUTME: Drop table extraction: classify tables, infer columns, attribute categories
// ABOUTME: Category comes from the nearest preceding heading, never across another drop table

package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DropEntry is one row of a drop table.
type DropEntry struct {
	Item          string `json:"item"`
	Quantity      string `json:"quantity"`
	Rarity        string `json:"rarity"`
	RarityPercent string `json:"rarity_percent,omitempty"`
}

// DropTableSection groups drops under one category heading. Raw tables
// sharing a category merge by appending in encounter order.
type DropTableSection struct {
	Category string      `json:"category"`
	Drops    []DropEntry `json:"drops"`
}

// defaultCategory labels tables with no attributable heading.
const defaultCategory = "Drops"

type columns struct {
	item   int
	qty    int
	rarity int
}

// ExtractDropTables finds every qualifying drop table in a page and returns
// its rows grouped by category. A table qualifies when its header row names
// both an item-like and a rarity-like column.
func ExtractDropTables(rawHTML string) []DropTableSection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	// Classify everything first: the category walk needs to recognize an
	// intervening qualifying table by node identity.
	type candidate struct {
		sel  *goquery.Selection
		node *html.Node
		cols columns
	}
	var cands []candidate
	qualifying := make(map[*html.Node]bool)
	doc.Find("table").Each(func(_ int, s *goquery.Selection) {
		cols, ok := classifyTable(s)
		if !ok {
			return
		}
		n := s.Get(0)
		qualifying[n] = true
		cands = append(cands, candidate{sel: s, node: n, cols: cols})
	})

	var sections []DropTableSection
	index := make(map[string]int)
	for _, c := range cands {
		drops := parseDropRows(c.sel, c.cols)
		if len(drops) == 0 {
			continue
		}
		category := categoryFor(c.node, qualifying)
		if i, ok := index[category]; ok {
			sections[i].Drops = append(sections[i].Drops, drops...)
		} else {
			index[category] = len(sections)
			sections = append(sections, DropTableSection{Category: category, Drops: drops})
		}
	}
	return sections
}

// classifyTable decides whether a table is a drop table and infers column
// positions from header text. When the item column cannot be located
// per-cell, the conventional (image, item, quantity, rarity) layout applies.
func classifyTable(s *goquery.Selection) (columns, bool) {
	header := s.Find("tr").First()
	rowText := strings.ToLower(header.Text())
	if !strings.Contains(rowText, "item") || !strings.Contains(rowText, "rarity") {
		return columns{}, false
	}

	cols := columns{item: -1, qty: -1, rarity: -1}
	header.Find("th, td").Each(func(i int, cell *goquery.Selection) {
		t := strings.ToLower(strings.TrimSpace(cell.Text()))
		switch {
		case cols.item == -1 && strings.Contains(t, "item"):
			cols.item = i
		case cols.qty == -1 && (strings.Contains(t, "quantity") || strings.Contains(t, "qty")):
			cols.qty = i
		case cols.rarity == -1 && strings.Contains(t, "rarity"):
			cols.rarity = i
		}
	})
	if cols.item == -1 {
		cols = columns{item: 1, qty: 2, rarity: 3}
	}
	return cols, true
}

// parseDropRows extracts accepted rows: at least 3 data cells, a real item
// name, and a non-empty rarity.
func parseDropRows(s *goquery.Selection, cols columns) []DropEntry {
	var drops []DropEntry
	s.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 || row.Find("th").Length() > 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		item := cellText(cells, cols.item)
		lowered := strings.ToLower(item)
		if item == "" || lowered == "nothing" || strings.Contains(lowered, "no drop") {
			return
		}
		rarity := cellText(cells, cols.rarity)
		if rarity == "" {
			return
		}

		entry := DropEntry{
			Item:     item,
			Quantity: cellText(cells, cols.qty),
			Rarity:   rarity,
		}
		if pct, ok := Percent(rarity); ok {
			entry.RarityPercent = pct
		}
		drops = append(drops, entry)
	})
	return drops
}

// cellText returns the cleaned text of cell idx, with citation superscripts
// dropped.
func cellText(cells *goquery.Selection, idx int) string {
	if idx < 0 || idx >= cells.Length() {
		return ""
	}
	cell := cells.Eq(idx)
	cell.Find("sup").Remove()
	return strings.Join(strings.Fields(cell.Text()), " ")
}

// categoryFor walks backward through preceding siblings. The first heading
// wins; an intervening qualifying drop table stops the walk so a category is
// never borrowed across an unrelated table.
func categoryFor(n *html.Node, qualifying map[*html.Node]bool) string {
	for prev := n.PrevSibling; prev != nil; prev = prev.PrevSibling {
		if prev.Type != html.ElementNode {
			continue
		}
		if h := headingNode(prev); h != nil {
			if text := headingText(h); text != "" {
				return text
			}
			return defaultCategory
		}
		if prev.Data == "table" && qualifying[prev] {
			return defaultCategory
		}
	}
	return defaultCategory
}

// headingNode unwraps a sibling into a heading element: either a direct
// h1-h6, or the heading inside a mw-heading wrapper div.
func headingNode(n *html.Node) *html.Node {
	if isHeadingTag(n.Data) {
		return n
	}
	if n.Data == "div" && strings.Contains(attr(n, "class"), "mw-heading") {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && isHeadingTag(c.Data) {
				return c
			}
		}
	}
	return nil
}

func isHeadingTag(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// headingText extracts a heading's text with section-edit chrome excluded.
func headingText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.Contains(attr(n, "class"), "mw-editsection") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
