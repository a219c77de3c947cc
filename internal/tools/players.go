// ABOUTME: Player tool: hiscores lookup returning the full fixed skill table
// ABOUTME: Unknown players are in-band misses; hiscores outages are hard errors

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gielinor/osrsdex/internal/hiscores"
	"github.com/gielinor/osrsdex/internal/types"
)

// newPlayerStatsTool creates the hiscores lookup tool.
func newPlayerStatsTool(d *Deps) *Tool {
	return &Tool{
		Name:        "get_player_stats",
		Description: "Look up a player's hiscores: rank, level, and experience for every skill.",
		Schema: json.RawMessage(`{
			"type": "object",
			"required": ["player"],
			"properties": {
				"player": {"type": "string", "minLength": 1, "maxLength": 12, "description": "Player display name"}
			}
		}`),
		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return executePlayerStats(ctx, d.Hiscores, args)
		},
	}
}

func executePlayerStats(ctx context.Context, client *hiscores.Client, args map[string]any) (any, error) {
	player, err := requireStringParam(args, "player")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}

	stats, err := client.Lookup(ctx, player)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return errPayload("player %q is not on the hiscores", player), nil
		}
		return nil, err
	}
	return stats, nil
}
