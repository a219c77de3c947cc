// ABOUTME: Tests for snapshot index construction and lookups
// ABOUTME: Covers descending-rarity source order, first-seen names, and search determinism

package bestiary

import (
	"testing"
	"time"
)

func testMonsters() []*Monster {
	return []*Monster{
		{
			ID: 239, Name: "King Black Dragon", CombatLevel: 276, Hitpoints: 240,
			Drops: []Drop{
				{ID: 536, Name: "Dragon bones", Quantity: "1", Rarity: 1},
				{ID: 1149, Name: "Dragon med helm", Quantity: "1", Rarity: 1.0 / 128},
			},
		},
		{
			ID: 415, Name: "Goblin", CombatLevel: 2, Hitpoints: 5,
			Drops: []Drop{
				{ID: 526, Name: "Bones", Quantity: "1", Rarity: 1},
			},
		},
		{
			ID: 50, Name: "Chicken", CombatLevel: 1, Hitpoints: 3,
			Drops: []Drop{
				{ID: 526, Name: "bones", Quantity: "1", Rarity: 0.5},
			},
		},
		{ID: 416, Name: "Goblin", CombatLevel: 5, Hitpoints: 10},
	}
}

func TestBuildSnapshot_SourcesSortedByRarity(t *testing.T) {
	t.Parallel()

	s := buildSnapshot(testMonsters(), time.Now())

	got := s.Sources(526)
	if len(got) != 2 {
		t.Fatalf("got %d sources; want 2", len(got))
	}
	// Goblin drops bones every kill, chicken only half the time.
	if got[0].MonsterName != "Goblin" || got[0].Rarity != 1 {
		t.Errorf("best source = %+v; want Goblin at rarity 1", got[0])
	}
	if got[1].MonsterName != "Chicken" {
		t.Errorf("second source = %+v; want Chicken", got[1])
	}
}

func TestBuildSnapshot_FirstSeenItemName(t *testing.T) {
	t.Parallel()

	// Chicken (id 50) records "bones", Goblin (id 415) records "Bones";
	// the ascending-id build makes the lower monster id's spelling win.
	s := buildSnapshot(testMonsters(), time.Now())
	if got := s.ItemName(526); got != "bones" {
		t.Errorf("ItemName(526) = %q; want %q", got, "bones")
	}
}

func TestSnapshot_ByName(t *testing.T) {
	t.Parallel()

	s := buildSnapshot(testMonsters(), time.Now())

	m := s.ByName("goblin")
	if m == nil {
		t.Fatal("ByName(goblin) = nil")
	}
	if m.ID != 415 {
		t.Errorf("ByName(goblin).ID = %d; want lowest id 415", m.ID)
	}
	if s.ByName("zulrah") != nil {
		t.Error("ByName(zulrah) should be nil")
	}
}

func TestSnapshot_SearchNames(t *testing.T) {
	t.Parallel()

	s := buildSnapshot(testMonsters(), time.Now())

	got := s.SearchNames("GOB", 0)
	if len(got) != 2 {
		t.Fatalf("got %d matches; want 2", len(got))
	}
	if got[0].ID != 415 || got[1].ID != 416 {
		t.Errorf("matches = %d, %d; want ascending 415, 416", got[0].ID, got[1].ID)
	}

	if got := s.SearchNames("gob", 1); len(got) != 1 {
		t.Errorf("limit ignored: got %d matches", len(got))
	}
	if got := s.SearchNames("", 10); got != nil {
		t.Errorf("empty query matched %d monsters", len(got))
	}
}

func TestSnapshot_Names_Deduplicated(t *testing.T) {
	t.Parallel()

	s := buildSnapshot(testMonsters(), time.Now())
	names := s.Names()

	count := 0
	for _, n := range names {
		if n == "Goblin" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Goblin appears %d times; want 1", count)
	}
	if len(names) != 3 {
		t.Errorf("got %d names; want 3 distinct: %v", len(names), names)
	}
}

func TestSnapshot_MatchItems(t *testing.T) {
	t.Parallel()

	s := buildSnapshot(testMonsters(), time.Now())

	got := s.MatchItems("dragon")
	if len(got) != 2 {
		t.Fatalf("got %d matches; want 2: %v", len(got), got)
	}
	if got[0].ID != 536 || got[1].ID != 1149 {
		t.Errorf("matches = %v; want ascending ids 536, 1149", got)
	}

	if got := s.MatchItems("zzz"); got != nil {
		t.Errorf("MatchItems(zzz) = %v; want nil", got)
	}
}

func TestSnapshot_Counts(t *testing.T) {
	t.Parallel()

	s := buildSnapshot(testMonsters(), time.Now())
	if s.Count() != 4 {
		t.Errorf("Count = %d; want 4", s.Count())
	}
	if s.Items() != 3 {
		t.Errorf("Items = %d; want 3", s.Items())
	}
}
