// ABOUTME: Wiki tools: article search and page retrieval as cleaned markdown
// ABOUTME: Pages pass through section filtering and heading-aware truncation

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gielinor/osrsdex/internal/markup"
	"github.com/gielinor/osrsdex/internal/types"
	"github.com/gielinor/osrsdex/internal/wiki"
)

// defaultPageLength bounds get_wiki_page output unless the caller overrides it.
const defaultPageLength = 8000

// maxPageImages caps the image URL list attached to a page.
const maxPageImages = 10

type searchWikiResponse struct {
	Query   string              `json:"query"`
	Count   int                 `json:"count"`
	Results []wiki.SearchResult `json:"results"`
}

type wikiPageResponse struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Truncated   bool     `json:"truncated"`
	AtSection   string   `json:"truncated_at_section,omitempty"`
	SectionsHit bool     `json:"sections_matched,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// newSearchWikiTool creates the wiki full-text search tool.
func newSearchWikiTool(d *Deps) *Tool {
	return &Tool{
		Name:        "search_wiki",
		Description: "Full-text search of the wiki. Returns titles with plain-text snippets.",
		Schema: json.RawMessage(`{
			"type": "object",
			"required": ["query"],
			"properties": {
				"query": {"type": "string", "minLength": 1, "description": "Search terms"},
				"limit": {"type": "integer", "minimum": 1, "maximum": 50, "description": "Maximum results (default 10)"}
			}
		}`),
		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return executeSearchWiki(ctx, d.Wiki, args)
		},
	}
}

func executeSearchWiki(ctx context.Context, client *wiki.Client, args map[string]any) (any, error) {
	query, err := requireStringParam(args, "query")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}
	limit := intParam(args, "limit", 10)

	results, err := client.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []wiki.SearchResult{}
	}
	return searchWikiResponse{Query: query, Count: len(results), Results: results}, nil
}

// newWikiPageTool creates the page retrieval tool.
func newWikiPageTool(d *Deps) *Tool {
	return &Tool{
		Name: "get_wiki_page",
		Description: "Fetch a wiki page as cleaned markdown. Optionally keep only named " +
			"sections and cap the output length; long pages truncate at a heading.",
		Schema: json.RawMessage(`{
			"type": "object",
			"required": ["title"],
			"properties": {
				"title": {"type": "string", "minLength": 1, "description": "Exact article title"},
				"sections": {"type": "array", "items": {"type": "string"}, "description": "Section titles to keep; when none match, the available sections are listed"},
				"max_length": {"type": "integer", "minimum": 100, "maximum": 50000, "description": "Output cap in bytes (default 8000)"},
				"include_images": {"type": "boolean", "description": "Attach up to 10 content image URLs"}
			}
		}`),
		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return executeWikiPage(ctx, d.Wiki, args)
		},
	}
}

func executeWikiPage(ctx context.Context, client *wiki.Client, args map[string]any) (any, error) {
	title, err := requireStringParam(args, "title")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidInput)
	}
	sections := stringSliceParam(args, "sections")
	maxLength := intParam(args, "max_length", defaultPageLength)
	includeImages := boolParam(args, "include_images", false)

	page, err := client.PageHTML(ctx, title)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return errPayload("no wiki page titled %q; try search_wiki to find the exact title", title), nil
		}
		return nil, err
	}

	content := markup.CleanContent(page.HTML)
	matched := true
	if len(sections) > 0 {
		// A miss replaces the content with the available-section listing so
		// the caller can retry with a real title.
		content, matched = markup.FilterSections(content, sections)
	}

	tr := markup.Truncate(content, maxLength)
	resp := wikiPageResponse{
		Title:       page.Title,
		Content:     tr.Content,
		Truncated:   tr.Truncated,
		AtSection:   tr.AtSection,
		SectionsHit: matched && len(sections) > 0,
	}
	if includeImages {
		resp.Images = markup.ExtractImageURLs(page.HTML, maxPageImages)
	}
	return resp, nil
}
