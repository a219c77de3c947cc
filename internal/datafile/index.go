// ABOUTME: Derived id index over a line snapshot for O(1) point lookups
// ABOUTME: Ids parse as the maximal leading ASCII digit run of each line

package datafile

import "strconv"

// ensureIndex builds the id index on first use after a (re)load.
func (sn *snapshot) ensureIndex() {
	if sn.index == nil {
		sn.index = buildIndex(sn.lines)
	}
}

// buildIndex maps each line's leading integer id to its 0-based offset.
// Lines without a leading digit run are skipped; a duplicated id keeps the
// later line.
func buildIndex(lines []string) map[int]int {
	idx := make(map[int]int, len(lines))
	for i, line := range lines {
		if id, ok := leadingID(line); ok {
			idx[id] = i
		}
	}
	return idx
}

// leadingID parses the maximal leading run of ASCII digits as an integer.
func leadingID(line string) (int, bool) {
	n := 0
	for n < len(line) && line[n] >= '0' && line[n] <= '9' {
		n++
	}
	if n == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(line[:n])
	if err != nil {
		return 0, false
	}
	return id, true
}
