// ABOUTME: Monster tools: name search, record + infobox lookup, live drop tables
// ABOUTME: Served from the bestiary snapshot; wiki and price data enrich on top

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/gielinor/osrsdex/internal/bestiary"
	"github.com/gielinor/osrsdex/internal/datafile"
	"github.com/gielinor/osrsdex/internal/log"
	"github.com/gielinor/osrsdex/internal/markup"
	"github.com/gielinor/osrsdex/internal/types"
)

// maxSuggestions caps the "did you mean" list on a failed name lookup.
const maxSuggestions = 5

const monstersUnavailable = "monster data is unavailable; try refresh_data with target monsters"

type monsterSummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	CombatLevel int    `json:"combat_level"`
	Hitpoints   int    `json:"hitpoints,omitempty"`
}

type searchMonstersResponse struct {
	Query       string           `json:"query"`
	Count       int              `json:"count"`
	Results     []monsterSummary `json:"results"`
	Suggestions []string         `json:"suggestions,omitempty"`
}

type monsterInfoResponse struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	CombatLevel int               `json:"combat_level"`
	Hitpoints   int               `json:"hitpoints,omitempty"`
	WikiURL     string            `json:"wiki_url,omitempty"`
	DropCount   int               `json:"drop_count"`
	Infobox     map[string]string `json:"infobox,omitempty"`
}

type dropWithPrice struct {
	markup.DropEntry
	ItemID    int  `json:"item_id,omitempty"`
	HighPrice *int `json:"high_price,omitempty"`
	LowPrice  *int `json:"low_price,omitempty"`
}

type dropSection struct {
	Category string          `json:"category"`
	Drops    []dropWithPrice `json:"drops"`
}

type monsterDropsResponse struct {
	Monster   string        `json:"monster"`
	Page      string        `json:"page"`
	MinRarity float64       `json:"min_rarity,omitempty"`
	Sections  []dropSection `json:"sections"`
}

// newSearchMonstersTool creates the monster name search tool.
func newSearchMonstersTool(d *Deps) *Tool {
	return &Tool{
		Name: "search_monsters",
		Description: "Search monsters by name (case-insensitive substring). Suggests close " +
			"names when nothing matches.",
		Schema: json.RawMessage(`{
			"type": "object",
			"required": ["query"],
			"properties": {
				"query": {"type": "string", "minLength": 1, "description": "Name or name fragment"},
				"limit": {"type": "integer", "minimum": 1, "maximum": 50, "description": "Maximum results (default 10)"}
			}
		}`),
		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return executeSearchMonsters(ctx, d.Bestiary, args)
		},
	}
}

func executeSearchMonsters(ctx context.Context, mgr *bestiary.Manager, args map[string]any) (any, error) {
	query, err := requireStringParam(args, "query")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}
	limit := intParam(args, "limit", 10)

	snap, err := mgr.Snapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return errPayload(monstersUnavailable), nil
	}

	matches := snap.SearchNames(query, limit)
	resp := searchMonstersResponse{Query: query, Count: len(matches), Results: make([]monsterSummary, 0, len(matches))}
	for _, m := range matches {
		resp.Results = append(resp.Results, monsterSummary{
			ID:          m.ID,
			Name:        m.Name,
			CombatLevel: m.CombatLevel,
			Hitpoints:   m.Hitpoints,
		})
	}
	if len(matches) == 0 {
		resp.Suggestions = suggestNames(query, snap.Names())
	}
	return resp, nil
}

// newMonsterInfoTool creates the single-monster lookup tool.
func newMonsterInfoTool(d *Deps) *Tool {
	return &Tool{
		Name: "get_monster_info",
		Description: "Get a monster's core stats plus its wiki infobox fields. The infobox is " +
			"best-effort; the core record is returned even when the wiki is unreachable.",
		Schema: json.RawMessage(`{
			"type": "object",
			"required": ["name"],
			"properties": {
				"name": {"type": "string", "minLength": 1, "description": "Monster name, exact or partial"}
			}
		}`),
		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return executeMonsterInfo(ctx, d, args)
		},
	}
}

func executeMonsterInfo(ctx context.Context, d *Deps, args map[string]any) (any, error) {
	name, err := requireStringParam(args, "name")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}

	snap, err := d.Bestiary.Snapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return errPayload(monstersUnavailable), nil
	}

	m, suggestions := resolveMonster(snap, name)
	if m == nil {
		return notFoundMonster(name, suggestions), nil
	}

	resp := monsterInfoResponse{
		ID:          m.ID,
		Name:        m.Name,
		CombatLevel: m.CombatLevel,
		Hitpoints:   m.Hitpoints,
		WikiURL:     m.WikiURL,
		DropCount:   len(m.Drops),
	}

	// Infobox enrichment is optional; a wiki failure degrades to the bare
	// record instead of failing the call.
	if d.Wiki != nil {
		page, perr := d.Wiki.PageHTML(ctx, pageTitle(m))
		if perr != nil {
			log.Warn("infobox fetch for %s failed: %v", m.Name, perr)
		} else {
			resp.Infobox = markup.ExtractInfobox(page.HTML)
		}
	}
	return resp, nil
}

// newMonsterDropsTool creates the live drop table tool.
func newMonsterDropsTool(d *Deps) *Tool {
	return &Tool{
		Name: "get_monster_drops",
		Description: "Get a monster's drop tables parsed from its wiki page, grouped by category. " +
			"Optionally filter by minimum drop rate and attach live GE prices.",
		Schema: json.RawMessage(`{
			"type": "object",
			"required": ["name"],
			"properties": {
				"name": {"type": "string", "minLength": 1, "description": "Monster name, exact or partial"},
				"min_rarity": {"type": "number", "minimum": 0, "maximum": 1, "description": "Drop probability floor; rows below it are omitted"},
				"include_prices": {"type": "boolean", "description": "Attach latest high/low GE prices per item"}
			}
		}`),
		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return executeMonsterDrops(ctx, d, args)
		},
	}
}

func executeMonsterDrops(ctx context.Context, d *Deps, args map[string]any) (any, error) {
	name, err := requireStringParam(args, "name")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}
	minRarity := floatParam(args, "min_rarity", 0)
	includePrices := boolParam(args, "include_prices", false)

	snap, err := d.Bestiary.Snapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return errPayload(monstersUnavailable), nil
	}

	m, suggestions := resolveMonster(snap, name)
	if m == nil {
		return notFoundMonster(name, suggestions), nil
	}

	title := pageTitle(m)
	page, err := d.Wiki.PageHTML(ctx, title)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return errPayload("no wiki page found for %s", m.Name), nil
		}
		return nil, err
	}

	sections := markup.ExtractDropTables(page.HTML)
	if len(sections) == 0 {
		return errPayload("the wiki page for %s has no drop tables", m.Name), nil
	}

	resp := monsterDropsResponse{Monster: m.Name, Page: page.Title, MinRarity: minRarity}
	for _, sec := range sections {
		out := dropSection{Category: sec.Category}
		for _, entry := range sec.Drops {
			if minRarity > 0 {
				// Unparseable rarity text stays in; only rows known to be
				// below the floor are dropped.
				if p, ok := markup.Decimal(entry.Rarity); ok && p < minRarity {
					continue
				}
			}
			row := dropWithPrice{DropEntry: entry}
			if includePrices {
				enrichPrice(ctx, d, &row)
			}
			out.Drops = append(out.Drops, row)
		}
		if len(out.Drops) > 0 {
			resp.Sections = append(resp.Sections, out)
		}
	}
	return resp, nil
}

// enrichPrice resolves the row's item name to an id via the items table and
// attaches its latest prices. Any failure leaves the row unpriced.
func enrichPrice(ctx context.Context, d *Deps, row *dropWithPrice) {
	if d.Store == nil || d.Prices == nil {
		return
	}
	lines, _, err := d.Store.Search("items", row.Item, datafile.ModeExact, 1, 0)
	if err != nil || len(lines) == 0 {
		return
	}
	id, ok := leadingInt(lines[0].Text)
	if !ok {
		return
	}
	row.ItemID = id

	quote, err := d.Prices.Latest(ctx, id)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			log.Warn("price lookup for %s (%d) failed: %v", row.Item, id, err)
		}
		return
	}
	row.HighPrice = quote.High
	row.LowPrice = quote.Low
}

// resolveMonster finds a monster by exact name, then by substring, and
// reports fuzzy suggestions when neither matches.
func resolveMonster(snap *bestiary.Snapshot, name string) (*bestiary.Monster, []string) {
	if m := snap.ByName(name); m != nil {
		return m, nil
	}
	if partial := snap.SearchNames(name, 1); len(partial) > 0 {
		return partial[0], nil
	}
	return nil, suggestNames(name, snap.Names())
}

// suggestNames fuzzy-ranks candidates against query.
func suggestNames(query string, candidates []string) []string {
	matches := fuzzy.Find(query, candidates)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out
}

func notFoundMonster(name string, suggestions []string) map[string]string {
	if len(suggestions) > 0 {
		return errPayload("no monster named %q; did you mean: %s", name, strings.Join(suggestions, ", "))
	}
	return errPayload("no monster named %q", name)
}

// pageTitle derives the wiki article title from the monster's wiki URL,
// falling back to its display name.
func pageTitle(m *bestiary.Monster) string {
	if m.WikiURL != "" {
		if i := strings.LastIndex(m.WikiURL, "/"); i >= 0 && i < len(m.WikiURL)-1 {
			t := m.WikiURL[i+1:]
			if u, err := url.PathUnescape(t); err == nil {
				t = u
			}
			return strings.ReplaceAll(t, "_", " ")
		}
	}
	return m.Name
}

// leadingInt parses the leading ASCII digit run of a table line.
func leadingInt(line string) (int, bool) {
	n := 0
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		n = n*10 + int(line[i]-'0')
		i++
	}
	return n, i > 0
}
