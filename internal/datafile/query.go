// ABOUTME: Point, bulk, exact, range, substring, and regex queries over datasets
// ABOUTME: Thin composition of the line store and id index; 1-based line numbers out

package datafile

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/gielinor/osrsdex/internal/types"
)

// Mode selects how Search interprets its query.
type Mode string

const (
	ModeSubstring Mode = "substring"
	ModeExact     Mode = "exact"
	ModeRegex     Mode = "regex"
)

// Line is one data line with its 1-based line number.
type Line struct {
	Number int    `json:"line"`
	Text   string `json:"text"`
}

// IDLine is one bulk-lookup result; Found distinguishes a present id from
// an absent one.
type IDLine struct {
	ID    int    `json:"id"`
	Text  string `json:"text,omitempty"`
	Found bool   `json:"found"`
}

// Search scans dataset name for lines matching query under mode. The total
// counts every match; the returned page honors offset and limit (limit <= 0
// means no cap). Substring matching is case-insensitive; exact matching
// compares the name field (second tab-delimited column) case-insensitively;
// regex patterns match against whole lines as compiled.
func (s *Store) Search(name, query string, mode Mode, limit, offset int) ([]Line, int, error) {
	lines, err := s.Lines(name)
	if err != nil {
		return nil, 0, err
	}

	var match func(string) bool
	switch mode {
	case ModeExact:
		match = func(line string) bool { return strings.EqualFold(nameField(line), query) }
	case ModeRegex:
		re, cerr := regexp.Compile(query)
		if cerr != nil {
			return nil, 0, fmt.Errorf("regex %q: %v: %w", query, cerr, types.ErrInvalidInput)
		}
		match = re.MatchString
	case ModeSubstring, "":
		q := strings.ToLower(query)
		match = func(line string) bool { return strings.Contains(strings.ToLower(line), q) }
	default:
		return nil, 0, fmt.Errorf("unknown search mode %q: %w", mode, types.ErrInvalidInput)
	}

	if offset < 0 {
		offset = 0
	}
	var matches []Line
	total := 0
	for i, line := range lines {
		if line == "" || !match(line) {
			continue
		}
		total++
		if total <= offset {
			continue
		}
		if limit > 0 && len(matches) >= limit {
			continue
		}
		matches = append(matches, Line{Number: i + 1, Text: line})
	}
	return matches, total, nil
}

// LineByID returns the line whose leading id equals id.
func (s *Store) LineByID(name string, id int) (Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.fresh(name)
	if err != nil {
		return Line{}, err
	}
	snap.ensureIndex()

	off, ok := snap.index[id]
	if !ok {
		return Line{}, fmt.Errorf("id %d in dataset %q: %w", id, name, types.ErrNotFound)
	}
	return Line{Number: off + 1, Text: snap.lines[off]}, nil
}

// LinesByIDs resolves each id, reporting found and missing entries in the
// order given.
func (s *Store) LinesByIDs(name string, ids []int) ([]IDLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.fresh(name)
	if err != nil {
		return nil, err
	}
	snap.ensureIndex()

	out := make([]IDLine, 0, len(ids))
	for _, id := range ids {
		if off, ok := snap.index[id]; ok {
			out = append(out, IDLine{ID: id, Text: snap.lines[off], Found: true})
		} else {
			out = append(out, IDLine{ID: id})
		}
	}
	return out, nil
}

// IDRange returns lines with ids in [lo, hi] ascending by id. The total
// counts every id in range; the page honors limit (limit <= 0 means no cap).
func (s *Store) IDRange(name string, lo, hi, limit int) ([]Line, int, error) {
	if lo > hi {
		return nil, 0, fmt.Errorf("start id %d greater than end id %d: %w", lo, hi, types.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.fresh(name)
	if err != nil {
		return nil, 0, err
	}
	snap.ensureIndex()

	ids := make([]int, 0)
	for id := range snap.index {
		if id >= lo && id <= hi {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	total := len(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]Line, len(ids))
	for i, id := range ids {
		off := snap.index[id]
		out[i] = Line{Number: off + 1, Text: snap.lines[off]}
	}
	return out, total, nil
}

// nameField extracts the second tab-delimited column, the display name in
// ID<TAB>Name tables. Lines without a tab compare whole.
func nameField(line string) string {
	i := strings.IndexByte(line, '\t')
	if i < 0 {
		return line
	}
	rest := line[i+1:]
	if j := strings.IndexByte(rest, '\t'); j >= 0 {
		return rest[:j]
	}
	return rest
}
