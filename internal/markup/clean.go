// ABOUTME: Wiki HTML cleaning: strip chrome, boilerplate sections, then markdown
// ABOUTME: goquery removes noise by selector; a node walker renders what remains

package markup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// noiseSelector matches page chrome that never belongs in tool output.
const noiseSelector = "script, style, nav, .navbox, .mw-editsection, sup.reference, .reference, .mw-references-wrap, .mw-jump-link, .toc, #toc, .mw-empty-elt, table.infobox, table.messagebox"

// boilerplateSections are removed along with their content.
var boilerplateSections = map[string]bool{
	"see also":       true,
	"references":     true,
	"external links": true,
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// CleanContent strips navigation, citation, and boilerplate noise from wiki
// HTML and converts the remainder to markdown. Unparsable input comes back
// unchanged.
func CleanContent(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	doc.Find(noiseSelector).Remove()
	removeBoilerplate(doc)

	var b strings.Builder
	for _, n := range doc.Selection.Nodes {
		renderNode(n, &b, false)
	}
	out := blankRuns.ReplaceAllString(b.String(), "\n\n")
	return strings.TrimSpace(out)
}

// removeBoilerplate drops see-also/references/external-links headings and
// everything under them up to the next heading of equal or higher level.
func removeBoilerplate(doc *goquery.Document) {
	doc.Find("h2, h3").Each(func(_ int, s *goquery.Selection) {
		title := strings.ToLower(strings.TrimSpace(s.Text()))
		if !boilerplateSections[title] {
			return
		}
		until := "h1, h2"
		if goquery.NodeName(s) == "h3" {
			until = "h1, h2, h3"
		}
		s.NextUntil(until).Remove()
		s.Remove()
	})
}

// renderNode walks the HTML tree and writes markdown. Adapted tag set for
// MediaWiki parser output: tables render as pipe-separated rows.
func renderNode(n *html.Node, b *strings.Builder, inPre bool) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "nav", "footer", "header", "iframe", "noscript":
			return
		case "h1":
			b.WriteString("\n# ")
		case "h2":
			b.WriteString("\n## ")
		case "h3":
			b.WriteString("\n### ")
		case "h4", "h5", "h6":
			b.WriteString("\n#### ")
		case "p", "div", "section":
			b.WriteString("\n\n")
		case "br":
			b.WriteString("\n")
		case "li":
			b.WriteString("\n- ")
		case "tr":
			b.WriteString("\n")
		case "td", "th":
			b.WriteString(" | ")
		case "pre":
			b.WriteString("\n```\n")
			inPre = true
		case "code":
			if !inPre {
				b.WriteString("`")
			}
		case "a":
			href := attr(n, "href")
			if href != "" {
				text := nodeText(n)
				if text != "" {
					fmt.Fprintf(b, "[%s](%s)", text, href)
					return
				}
			}
		case "strong", "b":
			b.WriteString("**")
		case "em", "i":
			b.WriteString("*")
		}
	}

	if n.Type == html.TextNode {
		if inPre {
			b.WriteString(n.Data)
		} else if words := strings.Fields(n.Data); len(words) > 0 {
			// One boundary space survives collapsing so words stay separated
			// around inline links and emphasis.
			if isSpace(n.Data[0]) {
				b.WriteString(" ")
			}
			b.WriteString(strings.Join(words, " "))
			if isSpace(n.Data[len(n.Data)-1]) {
				b.WriteString(" ")
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(c, b, inPre)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "pre":
			b.WriteString("\n```\n")
		case "code":
			if !inPre {
				b.WriteString("`")
			}
		case "strong", "b":
			b.WriteString("**")
		case "em", "i":
			b.WriteString("*")
		case "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteString("\n")
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// nodeText returns the concatenated text content of a node's subtree.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
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
