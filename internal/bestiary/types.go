// ABOUTME: Monster dataset record types and derived lookup descriptors
// ABOUTME: Shapes mirror the osrsreboxed monsters payload, trimmed to served fields

package bestiary

// Monster is one bestiary record. The upstream dataset carries dozens of
// fields per monster; only the served subset is decoded.
type Monster struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	CombatLevel int    `json:"combat_level"`
	Hitpoints   int    `json:"hitpoints"`
	WikiURL     string `json:"wiki_url,omitempty"`
	Drops       []Drop `json:"drops,omitempty"`
}

// Drop is one entry of a monster's drop list. Rarity is a probability in
// [0,1] per roll.
type Drop struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Quantity string  `json:"quantity"`
	Noted    bool    `json:"noted"`
	Rarity   float64 `json:"rarity"`
	Rolls    int     `json:"rolls"`
}

// Source describes one monster that can yield an item, from the inverted
// item index.
type Source struct {
	MonsterID   int     `json:"monster_id"`
	MonsterName string  `json:"monster_name"`
	CombatLevel int     `json:"combat_level"`
	Rarity      float64 `json:"rarity"`
	Quantity    string  `json:"quantity"`
	Noted       bool    `json:"noted,omitempty"`
}

// ItemMatch is one candidate from an item-name lookup.
type ItemMatch struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
