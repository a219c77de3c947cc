// ABOUTME: ID-table tools: substring/exact/regex search, point, bulk, and range lookups
// ABOUTME: All four serve from the line-file store and its lazily built id indexes

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gielinor/osrsdex/internal/datafile"
	"github.com/gielinor/osrsdex/internal/types"
)

// maxBulkIDs caps a single get_by_ids request.
const maxBulkIDs = 50

type searchIDsResponse struct {
	Dataset string          `json:"dataset"`
	Query   string          `json:"query"`
	Mode    string          `json:"mode"`
	Total   int             `json:"total"`
	Offset  int             `json:"offset"`
	Results []datafile.Line `json:"results"`
}

type idRangeResponse struct {
	Dataset string          `json:"dataset"`
	StartID int             `json:"start_id"`
	EndID   int             `json:"end_id"`
	Total   int             `json:"total"`
	Results []datafile.Line `json:"results"`
}

// datasetEnum renders the store's dataset names as a JSON enum list, so the
// schemas reject unknown tables before any handler runs.
func datasetEnum(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = strconv.Quote(n)
	}
	return strings.Join(quoted, ", ")
}

// newSearchIDsTool creates the tool that searches an ID table by text.
func newSearchIDsTool(d *Deps) *Tool {
	return &Tool{
		Name: "search_ids",
		Description: "Search a game ID table (items, npcs, objects, animations, sounds, music) by name. " +
			"Modes: substring (default, case-insensitive), exact (name field equality), regex.",
		Schema: json.RawMessage(fmt.Sprintf(`{
			"type": "object",
			"required": ["dataset", "query"],
			"properties": {
				"dataset": {"type": "string", "enum": [%s], "description": "Which ID table to search"},
				"query": {"type": "string", "description": "Search text, or a regex pattern in regex mode"},
				"mode": {"type": "string", "enum": ["substring", "exact", "regex"], "description": "Match mode (default substring)"},
				"limit": {"type": "integer", "minimum": 1, "maximum": 100, "description": "Maximum results per page (default 20)"},
				"offset": {"type": "integer", "minimum": 0, "description": "Matches to skip, for paging"}
			}
		}`, datasetEnum(d.Store.Datasets()))),
		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return executeSearchIDs(ctx, d.Store, args)
		},
	}
}

func executeSearchIDs(_ context.Context, store *datafile.Store, args map[string]any) (any, error) {
	dataset, err := requireStringParam(args, "dataset")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}
	query, err := requireStringParam(args, "query")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}
	mode := datafile.Mode(stringParam(args, "mode", string(datafile.ModeSubstring)))
	limit := intParam(args, "limit", 20)
	offset := intParam(args, "offset", 0)

	results, total, err := store.Search(dataset, query, mode, limit, offset)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return errPayload("dataset %s is not available: %v", dataset, err), nil
		}
		return nil, err
	}
	if results == nil {
		results = []datafile.Line{}
	}
	return searchIDsResponse{
		Dataset: dataset,
		Query:   query,
		Mode:    string(mode),
		Total:   total,
		Offset:  offset,
		Results: results,
	}, nil
}

// newGetByIDTool creates the point-lookup tool for a single id.
func newGetByIDTool(d *Deps) *Tool {
	return &Tool{
		Name:        "get_by_id",
		Description: "Look up a single entry in a game ID table by its numeric id.",
		Schema: json.RawMessage(fmt.Sprintf(`{
			"type": "object",
			"required": ["dataset", "id"],
			"properties": {
				"dataset": {"type": "string", "enum": [%s], "description": "Which ID table to read"},
				"id": {"type": "integer", "minimum": 0, "description": "Numeric id of the entry"}
			}
		}`, datasetEnum(d.Store.Datasets()))),
		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return executeGetByID(ctx, d.Store, args)
		},
	}
}

func executeGetByID(_ context.Context, store *datafile.Store, args map[string]any) (any, error) {
	dataset, err := requireStringParam(args, "dataset")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}
	id, err := requireIntParam(args, "id")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}

	line, err := store.LineByID(dataset, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return errPayload("no entry with id %d in %s", id, dataset), nil
		}
		return nil, err
	}
	return map[string]any{"dataset": dataset, "id": id, "line": line.Number, "text": line.Text}, nil
}

// newGetByIDsTool creates the bulk-lookup tool.
func newGetByIDsTool(d *Deps) *Tool {
	return &Tool{
		Name: "get_by_ids",
		Description: "Look up several entries in a game ID table at once. Reports found and " +
			"missing ids individually.",
		Schema: json.RawMessage(fmt.Sprintf(`{
			"type": "object",
			"required": ["dataset", "ids"],
			"properties": {
				"dataset": {"type": "string", "enum": [%s], "description": "Which ID table to read"},
				"ids": {"type": "array", "items": {"type": "integer", "minimum": 0}, "minItems": 1, "maxItems": %d, "description": "Numeric ids to resolve"}
			}
		}`, datasetEnum(d.Store.Datasets()), maxBulkIDs)),
		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return executeGetByIDs(ctx, d.Store, args)
		},
	}
}

func executeGetByIDs(_ context.Context, store *datafile.Store, args map[string]any) (any, error) {
	dataset, err := requireStringParam(args, "dataset")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}
	ids, err := requireIntSliceParam(args, "ids")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}
	if len(ids) > maxBulkIDs {
		return nil, fmt.Errorf("at most %d ids per request, got %d: %w", maxBulkIDs, len(ids), types.ErrInvalidInput)
	}

	results, err := store.LinesByIDs(dataset, ids)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return errPayload("dataset %s is not available: %v", dataset, err), nil
		}
		return nil, err
	}
	found := 0
	for _, r := range results {
		if r.Found {
			found++
		}
	}
	return map[string]any{"dataset": dataset, "found": found, "results": results}, nil
}

// newGetIDRangeTool creates the range-scan tool.
func newGetIDRangeTool(d *Deps) *Tool {
	return &Tool{
		Name:        "get_id_range",
		Description: "List entries of a game ID table whose ids fall in [start_id, end_id], ascending.",
		Schema: json.RawMessage(fmt.Sprintf(`{
			"type": "object",
			"required": ["dataset", "start_id", "end_id"],
			"properties": {
				"dataset": {"type": "string", "enum": [%s], "description": "Which ID table to read"},
				"start_id": {"type": "integer", "minimum": 0, "description": "Lowest id, inclusive"},
				"end_id": {"type": "integer", "minimum": 0, "description": "Highest id, inclusive"},
				"limit": {"type": "integer", "minimum": 1, "maximum": 200, "description": "Maximum results (default 50)"}
			}
		}`, datasetEnum(d.Store.Datasets()))),
		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return executeGetIDRange(ctx, d.Store, args)
		},
	}
}

func executeGetIDRange(_ context.Context, store *datafile.Store, args map[string]any) (any, error) {
	dataset, err := requireStringParam(args, "dataset")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}
	startID, err := requireIntParam(args, "start_id")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}
	endID, err := requireIntParam(args, "end_id")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}
	limit := intParam(args, "limit", 50)

	results, total, err := store.IDRange(dataset, startID, endID, limit)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return errPayload("dataset %s is not available: %v", dataset, err), nil
		}
		return nil, err
	}
	if results == nil {
		results = []datafile.Line{}
	}
	return idRangeResponse{
		Dataset: dataset,
		StartID: startID,
		EndID:   endID,
		Total:   total,
		Results: results,
	}, nil
}
