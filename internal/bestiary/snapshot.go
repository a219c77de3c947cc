// ABOUTME: Immutable monster snapshot with the three derived indexes
// ABOUTME: Indexes are rebuilt together from one raw payload and never patched

package bestiary

import (
	"sort"
	"strings"
	"time"
)

// Snapshot is a fully-built view of the monster dataset. It is immutable
// after construction; the manager replaces it wholesale, so readers need no
// locks.
type Snapshot struct {
	ordered   []*Monster // ascending id
	byID      map[int]*Monster
	nameIDs   map[string][]int // lowercased name -> ascending ids
	sources   map[int][]Source // item id -> sources, best odds first
	itemNames map[int]string   // item id -> first-seen display name
	itemIDs   []int            // ascending, for deterministic name scans
	built     time.Time
}

// buildSnapshot derives every index in one pass over ascending monster ids,
// so inverted lists and first-seen item names are deterministic.
func buildSnapshot(monsters []*Monster, at time.Time) *Snapshot {
	sort.Slice(monsters, func(i, j int) bool { return monsters[i].ID < monsters[j].ID })

	s := &Snapshot{
		ordered:   monsters,
		byID:      make(map[int]*Monster, len(monsters)),
		nameIDs:   make(map[string][]int),
		sources:   make(map[int][]Source),
		itemNames: make(map[int]string),
		built:     at,
	}
	for _, m := range monsters {
		s.byID[m.ID] = m
		if m.Name != "" {
			key := strings.ToLower(m.Name)
			s.nameIDs[key] = append(s.nameIDs[key], m.ID)
		}
		for _, d := range m.Drops {
			s.sources[d.ID] = append(s.sources[d.ID], Source{
				MonsterID:   m.ID,
				MonsterName: m.Name,
				CombatLevel: m.CombatLevel,
				Rarity:      d.Rarity,
				Quantity:    d.Quantity,
				Noted:       d.Noted,
			})
			if _, ok := s.itemNames[d.ID]; !ok {
				s.itemNames[d.ID] = d.Name
				s.itemIDs = append(s.itemIDs, d.ID)
			}
		}
	}

	sort.Ints(s.itemIDs)
	for id := range s.sources {
		list := s.sources[id]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Rarity > list[j].Rarity })
	}
	return s
}

// Count reports the number of monster records.
func (s *Snapshot) Count() int { return len(s.ordered) }

// Items reports the number of distinct droppable item ids.
func (s *Snapshot) Items() int { return len(s.itemIDs) }

// Built reports when the snapshot's indexes were constructed.
func (s *Snapshot) Built() time.Time { return s.built }

// ByID returns the monster with the given id, or nil.
func (s *Snapshot) ByID(id int) *Monster { return s.byID[id] }

// ByName returns the lowest-id monster whose name matches exactly,
// case-insensitively, or nil.
func (s *Snapshot) ByName(name string) *Monster {
	ids := s.nameIDs[strings.ToLower(strings.TrimSpace(name))]
	if len(ids) == 0 {
		return nil
	}
	return s.byID[ids[0]]
}

// SearchNames returns monsters whose name contains the query,
// case-insensitively, in ascending id order. A limit <= 0 means no cap.
func (s *Snapshot) SearchNames(query string, limit int) []*Monster {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []*Monster
	for _, m := range s.ordered {
		if !strings.Contains(strings.ToLower(m.Name), q) {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Names returns every distinct monster display name in ascending first-id
// order, for fuzzy suggestion candidates.
func (s *Snapshot) Names() []string {
	var names []string
	seen := make(map[string]bool, len(s.nameIDs))
	for _, m := range s.ordered {
		key := strings.ToLower(m.Name)
		if m.Name == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, m.Name)
	}
	return names
}

// Sources returns the monsters that can yield item id, best odds first.
// Callers must not mutate the returned slice.
func (s *Snapshot) Sources(itemID int) []Source {
	return s.sources[itemID]
}

// ItemName returns the display name recorded for item id, if any monster
// drops it.
func (s *Snapshot) ItemName(itemID int) string { return s.itemNames[itemID] }

// MatchItems returns droppable items whose recorded name contains the
// fragment, case-insensitively, in ascending id order. Display names come
// from the first source monster seen during the build, so two monsters
// recording different spellings for one id resolve to the lower monster id's
// spelling.
func (s *Snapshot) MatchItems(fragment string) []ItemMatch {
	q := strings.ToLower(strings.TrimSpace(fragment))
	if q == "" {
		return nil
	}
	var out []ItemMatch
	for _, id := range s.itemIDs {
		name := s.itemNames[id]
		if strings.Contains(strings.ToLower(name), q) {
			out = append(out, ItemMatch{ID: id, Name: name})
		}
	}
	return out
}
