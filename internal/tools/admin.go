// ABOUTME: Admin tools: forced dataset regeneration and cache counter inspection
// ABOUTME: Integrity rejections surface as hard errors and never touch good data

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gielinor/osrsdex/internal/types"
)

// newRefreshDataTool creates the owned-dataset refresh tool.
func newRefreshDataTool(d *Deps) *Tool {
	return &Tool{
		Name: "refresh_data",
		Description: "Regenerate an owned dataset from its upstream source: the sounds ID table " +
			"or the monster snapshot. An implausibly small download is rejected and the " +
			"existing data kept.",
		Schema: json.RawMessage(`{
			"type": "object",
			"required": ["target"],
			"properties": {
				"target": {"type": "string", "enum": ["sounds", "monsters"], "description": "Which dataset to refresh"}
			}
		}`),
		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return executeRefreshData(ctx, d, args)
		},
	}
}

func executeRefreshData(ctx context.Context, d *Deps, args map[string]any) (any, error) {
	target, err := requireStringParam(args, "target")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}

	switch target {
	case "sounds":
		count, err := d.Refresher.Refresh(ctx, "sounds")
		if err != nil {
			return nil, err
		}
		return map[string]any{"target": target, "records": count}, nil

	case "monsters":
		snap, err := d.Bestiary.Snapshot(ctx, true)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			return errPayload("monster dataset fetch failed; existing data kept"), nil
		}
		return map[string]any{"target": target, "records": snap.Count(), "items": snap.Items()}, nil

	default:
		return nil, fmt.Errorf("unknown refresh target %q: %w", target, types.ErrInvalidInput)
	}
}

// newCacheStatsTool creates the cache introspection tool.
func newCacheStatsTool(d *Deps) *Tool {
	return &Tool{
		Name: "cache_stats",
		Description: "Report hit/miss/eviction counters for every cache tier: the line-file " +
			"store, the monster snapshot, and the wiki, price, and hiscores response caches.",
		Schema: json.RawMessage(`{
			"type": "object",
			"properties": {}
		}`),
		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return executeCacheStats(ctx, d)
		},
	}
}

func executeCacheStats(_ context.Context, d *Deps) (any, error) {
	out := map[string]any{
		"datafiles": d.Store.Snapshot(),
	}
	if d.Bestiary != nil {
		out["monsters"] = d.Bestiary.Stats()
	}
	if d.Wiki != nil {
		for name, st := range d.Wiki.CacheStats() {
			out[name] = st
		}
	}
	if d.Prices != nil {
		out["prices"] = d.Prices.CacheStats()
	}
	if d.Hiscores != nil {
		out["hiscores"] = d.Hiscores.CacheStats()
	}
	return out, nil
}
