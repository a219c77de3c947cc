// ABOUTME: Level-aware section filtering over rendered page text
// ABOUTME: A matched heading keeps everything up to the next heading of equal or higher level

package markup

import (
	"fmt"
	"strings"
)

type section struct {
	title string
	level int
	start int // line index of the heading
	end   int // exclusive line index
}

// FilterSections keeps only the segments whose headings match one of the
// requested titles. Matching is a case-insensitive substring test in either
// direction. When nothing matches, the returned string lists the sections
// that do exist and ok is false.
func FilterSections(content string, titles []string) (filtered string, ok bool) {
	if len(titles) == 0 {
		return content, true
	}

	lines := strings.Split(content, "\n")
	secs := scanSections(lines)

	var parts []string
	covered := -1
	for _, sec := range secs {
		// Subsections inside an already-kept segment ride along with it.
		if sec.start <= covered {
			continue
		}
		if !titleMatches(sec.title, titles) {
			continue
		}
		covered = sec.end - 1
		parts = append(parts, strings.Join(lines[sec.start:sec.end], "\n"))
	}
	if len(parts) == 0 {
		return availableListing(secs), false
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n")), true
}

// scanSections finds every heading line and the segment it owns. A segment
// runs until the next heading at the same or a shallower level.
func scanSections(lines []string) []section {
	var secs []section
	for i, line := range lines {
		title, level, hok := parseHeading(line)
		if !hok {
			continue
		}
		secs = append(secs, section{title: title, level: level, start: i})
	}
	for i := range secs {
		end := len(lines)
		for j := i + 1; j < len(secs); j++ {
			if secs[j].level <= secs[i].level {
				end = secs[j].start
				break
			}
		}
		secs[i].end = end
	}
	return secs
}

// parseHeading reports the title and level of a markdown ATX heading line.
func parseHeading(line string) (title string, level int, ok bool) {
	i := 0
	for i < len(line) && line[i] == '#' {
		i++
	}
	if i == 0 || i > 6 || i >= len(line) || line[i] != ' ' {
		return "", 0, false
	}
	return strings.TrimSpace(line[i+1:]), i, true
}

func titleMatches(title string, requested []string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return false
	}
	for _, r := range requested {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if strings.Contains(t, r) || strings.Contains(r, t) {
			return true
		}
	}
	return false
}

func availableListing(secs []section) string {
	if len(secs) == 0 {
		return "No sections found in this page."
	}
	var b strings.Builder
	b.WriteString("No matching sections found. Available sections:\n")
	for _, s := range secs {
		fmt.Fprintf(&b, "- %s\n", s.title)
	}
	return strings.TrimRight(b.String(), "\n")
}
