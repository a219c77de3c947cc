// ABOUTME: Content image URL extraction with deduplication
// ABOUTME: Protocol-relative sources normalize to https; data URIs are dropped

package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractImageURLs returns up to limit distinct image sources from the page
// content, in document order. A limit <= 0 means no cap.
func ExtractImageURLs(rawHTML string, limit int) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var urls []string
	seen := make(map[string]bool)
	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, ok := img.Attr("src")
		if !ok {
			return true
		}
		src = strings.TrimSpace(src)
		if src == "" || strings.HasPrefix(src, "data:") {
			return true
		}
		if strings.HasPrefix(src, "//") {
			src = "https:" + src
		}
		if seen[src] {
			return true
		}
		seen[src] = true
		urls = append(urls, src)
		return limit <= 0 || len(urls) < limit
	})
	return urls
}
