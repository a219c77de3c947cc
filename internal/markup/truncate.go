// ABOUTME: Length-capped content truncation with structure-aware cut points
// ABOUTME: Prefers a heading boundary, then a paragraph break, then a hard cut

package markup

import "strings"

// truncationNotice is appended whenever content is shortened.
const truncationNotice = "\n\n[Content truncated. Request specific sections for the rest.]"

// headingLookahead bounds how far before the cut point a heading boundary
// is still preferred over a mid-section cut.
const headingLookahead = 512

// TruncateResult reports what Truncate kept and where it cut.
type TruncateResult struct {
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
	AtSection string `json:"at_section,omitempty"`
}

// Truncate shortens content to at most max bytes plus a fixed notice.
// Content that already fits comes back unchanged. A max <= 0 disables
// truncation.
func Truncate(content string, max int) TruncateResult {
	if max <= 0 || len(content) <= max {
		return TruncateResult{Content: content}
	}

	floor := max - headingLookahead
	if floor < 0 {
		floor = 0
	}

	// Latest heading line starting inside the window becomes the cut point;
	// everything from that heading on is dropped.
	cut, section := -1, ""
	offset := 0
	for _, line := range strings.SplitAfter(content, "\n") {
		start := offset
		offset += len(line)
		if start > max {
			break
		}
		title, _, ok := parseHeading(strings.TrimRight(line, "\n"))
		if !ok || start == 0 {
			continue
		}
		if start >= floor && start <= max {
			cut, section = start, title
		}
	}
	if cut > 0 {
		kept := strings.TrimRight(content[:cut], "\n ")
		return TruncateResult{Content: kept + truncationNotice, Truncated: true, AtSection: section}
	}

	// Latest paragraph break that still retains at least half the target.
	if q := strings.LastIndex(content[:max], "\n\n"); q >= max/2 {
		kept := strings.TrimRight(content[:q], "\n ")
		return TruncateResult{Content: kept + truncationNotice, Truncated: true}
	}

	return TruncateResult{Content: content[:max] + truncationNotice, Truncated: true}
}
