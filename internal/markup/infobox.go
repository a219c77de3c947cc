// ABOUTME: Infobox extraction: the first structured info block as key/value pairs
// ABOUTME: Keys are lowercased and underscore-joined; absent infobox returns nil

package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractInfobox returns the first infobox table's rows as a flat map.
// Returns nil when the page carries no infobox.
func ExtractInfobox(rawHTML string) map[string]string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	box := doc.Find("table.infobox").First()
	if box.Length() == 0 {
		return nil
	}

	fields := make(map[string]string)
	box.Find("tr").Each(func(_ int, row *goquery.Selection) {
		th := row.Find("th").First()
		td := row.Find("td").First()
		if th.Length() == 0 || td.Length() == 0 {
			return
		}
		key := infoboxKey(th.Text())
		if key == "" {
			return
		}
		td.Find("sup").Remove()
		value := strings.Join(strings.Fields(td.Text()), " ")
		if value == "" {
			return
		}
		fields[key] = value
	})

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// infoboxKey normalizes a header label: lowercased, whitespace collapsed to
// underscores.
func infoboxKey(label string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(label)))
	return strings.Join(fields, "_")
}
