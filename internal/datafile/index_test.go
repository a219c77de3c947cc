// ABOUTME: Tests for the derived id index and leading digit run parsing
// ABOUTME: Validates offsets, skipped lines, and rebuild-on-reload semantics

package datafile

import (
	"testing"
	"time"
)

func TestIndex_Offsets(t *testing.T) {
	t.Parallel()

	s, dir := newTestStore(t, time.Hour)
	writeTable(t, dir, "items.tsv", "4151\tAbyssal whip\n4153\tGranite maul\n# comment\nx999\tnot an id\n\n11802\tArmadyl godsword\n")

	idx, err := s.Index("items")
	if err != nil {
		t.Fatal(err)
	}

	want := map[int]int{4151: 0, 4153: 1, 11802: 5}
	if len(idx) != len(want) {
		t.Fatalf("index has %d entries, want %d: %v", len(idx), len(want), idx)
	}
	for id, off := range want {
		if got, ok := idx[id]; !ok || got != off {
			t.Errorf("idx[%d] = %d, %v; want %d, true", id, got, ok, off)
		}
	}
}

func TestIndex_NoDigitLines(t *testing.T) {
	t.Parallel()

	s, dir := newTestStore(t, time.Hour)
	writeTable(t, dir, "items.tsv", "alpha\nbeta\n# gamma\n")

	idx, err := s.Index("items")
	if err != nil {
		t.Fatal(err)
	}
	if len(idx) != 0 {
		t.Errorf("index has %d entries, want 0", len(idx))
	}
}

func TestIndex_RebuiltOnReload(t *testing.T) {
	t.Parallel()

	s, dir := newTestStore(t, time.Hour)
	writeTable(t, dir, "items.tsv", "1\told\n")

	idx, err := s.Index("items")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := idx[1]; !ok {
		t.Fatal("expected id 1 in first index")
	}

	writeTable(t, dir, "items.tsv", "2\tnew\n")
	s.Invalidate("items")

	idx, err = s.Index("items")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := idx[1]; ok {
		t.Error("stale id 1 survived the rebuild")
	}
	if off, ok := idx[2]; !ok || off != 0 {
		t.Errorf("idx[2] = %d, %v; want 0, true", off, ok)
	}
}

func TestIndex_DuplicateKeepsLater(t *testing.T) {
	t.Parallel()

	s, dir := newTestStore(t, time.Hour)
	writeTable(t, dir, "items.tsv", "7\tfirst\n7\tsecond\n")

	idx, err := s.Index("items")
	if err != nil {
		t.Fatal(err)
	}
	if off := idx[7]; off != 1 {
		t.Errorf("idx[7] = %d, want 1 (later line wins)", off)
	}
}

func TestLeadingID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line   string
		wantID int
		wantOK bool
	}{
		{"123\tname", 123, true},
		{"007\tname", 7, true},
		{"12ab", 12, true},
		{"42", 42, true},
		{"abc", 0, false},
		{"", 0, false},
		{"\t123", 0, false},
		{"99999999999999999999\toverflow", 0, false},
	}

	for _, tt := range tests {
		id, ok := leadingID(tt.line)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("leadingID(%q) = %d, %v; want %d, %v", tt.line, id, ok, tt.wantID, tt.wantOK)
		}
	}
}
