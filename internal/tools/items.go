// ABOUTME: Item tools: reverse drop lookup through the inverted index, live GE price
// ABOUTME: Items resolve by id or by name; name resolution reports its candidates

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gielinor/osrsdex/internal/bestiary"
	"github.com/gielinor/osrsdex/internal/datafile"
	"github.com/gielinor/osrsdex/internal/markup"
	"github.com/gielinor/osrsdex/internal/prices"
	"github.com/gielinor/osrsdex/internal/types"
)

// maxItemCandidates caps the alternative names reported for a fragment match.
const maxItemCandidates = 10

type itemSource struct {
	MonsterID      int     `json:"monster_id"`
	MonsterName    string  `json:"monster_name"`
	CombatLevel    int     `json:"combat_level"`
	Rarity         float64 `json:"rarity"`
	RarityFraction string  `json:"rarity_fraction"`
	Quantity       string  `json:"quantity"`
	Noted          bool    `json:"noted,omitempty"`
}

type itemSourcesResponse struct {
	ItemID     int          `json:"item_id"`
	ItemName   string       `json:"item_name"`
	Total      int          `json:"total"`
	Sources    []itemSource `json:"sources"`
	Candidates []string     `json:"candidates,omitempty"`
}

type itemPriceResponse struct {
	ItemID   int    `json:"item_id"`
	ItemName string `json:"item_name,omitempty"`
	High     *int   `json:"high"`
	HighTime *int64 `json:"high_time"`
	Low      *int   `json:"low"`
	LowTime  *int64 `json:"low_time"`
}

// newItemSourcesTool creates the reverse drop lookup tool.
func newItemSourcesTool(d *Deps) *Tool {
	return &Tool{
		Name: "get_item_sources",
		Description: "List the monsters that drop an item, best rate first. Identify the item " +
			"by item_id or by item_name (first match wins; alternatives are reported).",
		Schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"item_id": {"type": "integer", "minimum": 0, "description": "Item id from the items table"},
				"item_name": {"type": "string", "minLength": 1, "description": "Item name or fragment"},
				"min_rarity": {"type": "number", "minimum": 0, "maximum": 1, "description": "Drop probability floor; sources below it are omitted"},
				"limit": {"type": "integer", "minimum": 1, "maximum": 100, "description": "Maximum sources (default 20)"}
			}
		}`),
		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return executeItemSources(ctx, d.Bestiary, args)
		},
	}
}

func executeItemSources(ctx context.Context, mgr *bestiary.Manager, args map[string]any) (any, error) {
	_, hasID := args["item_id"]
	_, hasName := args["item_name"]
	if hasID == hasName {
		return nil, fmt.Errorf("exactly one of item_id or item_name is required: %w", types.ErrInvalidInput)
	}
	minRarity := floatParam(args, "min_rarity", 0)
	limit := intParam(args, "limit", 20)

	snap, err := mgr.Snapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return errPayload(monstersUnavailable), nil
	}

	var (
		itemID     int
		candidates []string
	)
	if hasID {
		itemID, err = requireIntParam(args, "item_id")
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
		}
	} else {
		name, nerr := requireStringParam(args, "item_name")
		if nerr != nil {
			return nil, fmt.Errorf("%v: %w", nerr, types.ErrInvalidInput)
		}
		matches := snap.MatchItems(name)
		if len(matches) == 0 {
			return errPayload("no dropped item matches %q", name), nil
		}
		itemID = matches[0].ID
		for i := 1; i < len(matches) && len(candidates) < maxItemCandidates; i++ {
			candidates = append(candidates, matches[i].Name)
		}
	}

	all := snap.Sources(itemID)
	if len(all) == 0 {
		return errPayload("no monsters drop item %d", itemID), nil
	}

	resp := itemSourcesResponse{
		ItemID:     itemID,
		ItemName:   snap.ItemName(itemID),
		Candidates: candidates,
	}
	for _, src := range all {
		if minRarity > 0 && src.Rarity < minRarity {
			continue
		}
		resp.Total++
		if len(resp.Sources) >= limit {
			continue
		}
		resp.Sources = append(resp.Sources, itemSource{
			MonsterID:      src.MonsterID,
			MonsterName:    src.MonsterName,
			CombatLevel:    src.CombatLevel,
			Rarity:         src.Rarity,
			RarityFraction: markup.Fraction(src.Rarity),
			Quantity:       src.Quantity,
			Noted:          src.Noted,
		})
	}
	if resp.Sources == nil {
		resp.Sources = []itemSource{}
	}
	return resp, nil
}

// newItemPriceTool creates the live price lookup tool.
func newItemPriceTool(d *Deps) *Tool {
	return &Tool{
		Name: "get_item_price",
		Description: "Get the latest GE high/low prices for an item, by item_id or by item_name " +
			"resolved through the items table.",
		Schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"item_id": {"type": "integer", "minimum": 0, "description": "Item id from the items table"},
				"item_name": {"type": "string", "minLength": 1, "description": "Item name, exact preferred"}
			}
		}`),
		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return executeItemPrice(ctx, d.Store, d.Prices, args)
		},
	}
}

func executeItemPrice(ctx context.Context, store *datafile.Store, client *prices.Client, args map[string]any) (any, error) {
	_, hasID := args["item_id"]
	_, hasName := args["item_name"]
	if !hasID && !hasName {
		return nil, fmt.Errorf("one of item_id or item_name is required: %w", types.ErrInvalidInput)
	}

	var (
		itemID   int
		itemName string
		err      error
	)
	if hasID {
		itemID, err = requireIntParam(args, "item_id")
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
		}
		if line, lerr := store.LineByID("items", itemID); lerr == nil {
			itemName = nameColumn(line.Text)
		}
	} else {
		name, nerr := requireStringParam(args, "item_name")
		if nerr != nil {
			return nil, fmt.Errorf("%v: %w", nerr, types.ErrInvalidInput)
		}
		itemID, itemName, err = resolveItemName(store, name)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return errPayload("no item named %q in the items table", name), nil
			}
			return nil, err
		}
	}

	quote, err := client.Latest(ctx, itemID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return errPayload("no price data for item %d; it may be untradeable", itemID), nil
		}
		return nil, err
	}
	return itemPriceResponse{
		ItemID:   itemID,
		ItemName: itemName,
		High:     quote.High,
		HighTime: quote.HighTime,
		Low:      quote.Low,
		LowTime:  quote.LowTime,
	}, nil
}

// resolveItemName maps an item name to its id, trying exact name-field
// equality before falling back to substring match.
func resolveItemName(store *datafile.Store, name string) (int, string, error) {
	for _, mode := range []datafile.Mode{datafile.ModeExact, datafile.ModeSubstring} {
		lines, _, err := store.Search("items", name, mode, 1, 0)
		if err != nil {
			return 0, "", err
		}
		if len(lines) == 0 {
			continue
		}
		if id, ok := leadingInt(lines[0].Text); ok {
			return id, nameColumn(lines[0].Text), nil
		}
	}
	return 0, "", fmt.Errorf("item %q: %w", name, types.ErrNotFound)
}

// nameColumn extracts the display name from an ID<TAB>Name line.
func nameColumn(line string) string {
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		rest := line[i+1:]
		if j := strings.IndexByte(rest, '\t'); j >= 0 {
			return rest[:j]
		}
		return rest
	}
	return ""
}
