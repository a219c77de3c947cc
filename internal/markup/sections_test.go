// ABOUTME: Tests for section filtering: level-aware spans, substring matching, listings
// ABOUTME: Covers subsection inclusion, no-match listings, and empty filter passthrough

package markup

import (
	"strings"
	"testing"
)

const monsterPage = "intro text\n" +
	"## Strategy\n" +
	"Use Protect from Melee.\n" +
	"### Gear\n" +
	"Bring a whip.\n" +
	"## Drops\n" +
	"Bones every kill.\n" +
	"## Trivia\n" +
	"A fun fact."

func TestFilterSections_KeepsSegmentThroughSubsections(t *testing.T) {
	t.Parallel()

	got, ok := FilterSections(monsterPage, []string{"strategy"})
	if !ok {
		t.Fatalf("no match: %q", got)
	}
	want := "## Strategy\nUse Protect from Melee.\n### Gear\nBring a whip."
	if got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestFilterSections_MultipleMatches(t *testing.T) {
	t.Parallel()

	got, ok := FilterSections(monsterPage, []string{"drops", "trivia"})
	if !ok {
		t.Fatalf("no match: %q", got)
	}
	if !strings.Contains(got, "Bones every kill.") || !strings.Contains(got, "A fun fact.") {
		t.Errorf("missing matched sections: %q", got)
	}
	if strings.Contains(got, "Protect from Melee") {
		t.Errorf("unmatched section leaked: %q", got)
	}
}

func TestFilterSections_SubsectionNotDuplicated(t *testing.T) {
	t.Parallel()

	// Gear already rides along inside Strategy; matching both must not
	// emit it twice.
	got, ok := FilterSections(monsterPage, []string{"strategy", "gear"})
	if !ok {
		t.Fatalf("no match: %q", got)
	}
	if n := strings.Count(got, "### Gear"); n != 1 {
		t.Errorf("Gear appears %d times; want 1: %q", n, got)
	}
}

func TestFilterSections_BidirectionalSubstring(t *testing.T) {
	t.Parallel()

	// Request contained in title.
	if _, ok := FilterSections(monsterPage, []string{"strat"}); !ok {
		t.Error("request substring of title should match")
	}
	// Title contained in request.
	if _, ok := FilterSections(monsterPage, []string{"monster drops section"}); !ok {
		t.Error("title substring of request should match")
	}
}

func TestFilterSections_NoMatchListsAvailable(t *testing.T) {
	t.Parallel()

	got, ok := FilterSections(monsterPage, []string{"bananas"})
	if ok {
		t.Fatalf("unexpected match: %q", got)
	}
	for _, title := range []string{"Strategy", "Gear", "Drops", "Trivia"} {
		if !strings.Contains(got, "- "+title) {
			t.Errorf("listing missing %q: %q", title, got)
		}
	}
}

func TestFilterSections_EmptyFilterPassthrough(t *testing.T) {
	t.Parallel()

	got, ok := FilterSections(monsterPage, nil)
	if !ok || got != monsterPage {
		t.Errorf("nil filter should return content unchanged")
	}
}

func TestFilterSections_NoHeadings(t *testing.T) {
	t.Parallel()

	got, ok := FilterSections("just prose, no headings", []string{"anything"})
	if ok {
		t.Fatalf("unexpected match: %q", got)
	}
	if !strings.Contains(got, "No sections found") {
		t.Errorf("got %q; want a no-sections notice", got)
	}
}
