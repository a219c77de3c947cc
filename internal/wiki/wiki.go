// ABOUTME: MediaWiki API collaborator: article search, page HTML, existence checks
// ABOUTME: Error-or-result envelope decoding; responses cached and fetches coalesced

package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/gielinor/osrsdex/internal/cache"
	"github.com/gielinor/osrsdex/internal/types"
)

// Doer is the HTTP collaborator contract; *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// SearchResult is one article hit from a full-text search.
type SearchResult struct {
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Size      int    `json:"size"`
	WordCount int    `json:"wordcount"`
	Timestamp string `json:"timestamp"`
}

// Page is a parsed article: its canonical title and rendered HTML.
type Page struct {
	Title  string `json:"title"`
	PageID int    `json:"page_id"`
	HTML   string `json:"-"`
}

// Client talks to a MediaWiki api.php endpoint. All calls cache through a
// bounded response cache and coalesce identical in-flight fetches.
type Client struct {
	base  string
	agent string
	http  Doer

	pages  *cache.ResponseCache[Page]
	search *cache.ResponseCache[[]SearchResult]
	exists *cache.ResponseCache[bool]
	flight cache.Flight
}

// New returns a client for the api.php endpoint at base. The wiki rejects
// requests without a descriptive User-Agent, so agent is mandatory.
func New(base, agent string, client Doer, ttl time.Duration, maxEntries int, policy string) *Client {
	return &Client{
		base:   base,
		agent:  agent,
		http:   client,
		pages:  cache.NewResponseCache[Page](ttl, maxEntries, cache.NewStrategy(policy, maxEntries)),
		search: cache.NewResponseCache[[]SearchResult](ttl, maxEntries, cache.NewStrategy(policy, maxEntries)),
		exists: cache.NewResponseCache[bool](ttl, maxEntries, cache.NewStrategy(policy, maxEntries)),
	}
}

// apiError is the MediaWiki error arm. Its presence in a response means the
// request failed regardless of HTTP status.
type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *apiError) toErr(what string) error {
	switch e.Code {
	case "missingtitle", "nosuchpage", "pagecannotexist":
		return fmt.Errorf("%s: %s: %w", what, e.Info, types.ErrNotFound)
	case "invalidtitle":
		return fmt.Errorf("%s: %s: %w", what, e.Info, types.ErrInvalidInput)
	}
	return fmt.Errorf("wiki error %s: %s", e.Code, e.Info)
}

type searchEnvelope struct {
	Error *apiError `json:"error"`
	Query *struct {
		Search []SearchResult `json:"search"`
	} `json:"query"`
}

type parseEnvelope struct {
	Error *apiError `json:"error"`
	Parse *struct {
		Title  string `json:"title"`
		PageID int    `json:"pageid"`
		Text   string `json:"text"`
	} `json:"parse"`
}

type existsEnvelope struct {
	Error *apiError `json:"error"`
	Query *struct {
		Pages []struct {
			Title   string `json:"title"`
			Missing bool   `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripTags flattens the highlight spans MediaWiki embeds in snippets.
func stripTags(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}

// Search runs a full-text article search.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	key := cache.Key("wiki_search", map[string]any{"q": query, "limit": limit})
	if hit, ok := c.search.Get(key); ok {
		return hit, nil
	}

	results, _, err := cache.Do(&c.flight, key, func() ([]SearchResult, error) {
		body, err := c.get(ctx, url.Values{
			"action":        {"query"},
			"list":          {"search"},
			"srsearch":      {query},
			"srlimit":       {strconv.Itoa(limit)},
			"format":        {"json"},
			"formatversion": {"2"},
		}, 1<<20)
		if err != nil {
			return nil, err
		}

		var env searchEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("decoding wiki search response: %w", err)
		}
		if env.Error != nil {
			return nil, env.Error.toErr("wiki search")
		}
		if env.Query == nil {
			return nil, fmt.Errorf("wiki search response missing query payload")
		}

		out := env.Query.Search
		for i := range out {
			out[i].Snippet = stripTags(out[i].Snippet)
		}
		c.search.Set(key, out)
		return out, nil
	})
	return results, err
}

// PageHTML fetches an article's rendered HTML. A missing page wraps
// ErrNotFound.
func (c *Client) PageHTML(ctx context.Context, title string) (Page, error) {
	key := cache.Key("wiki_page", map[string]any{"title": title})
	if hit, ok := c.pages.Get(key); ok {
		return hit, nil
	}

	page, _, err := cache.Do(&c.flight, key, func() (Page, error) {
		body, err := c.get(ctx, url.Values{
			"action":        {"parse"},
			"page":          {title},
			"prop":          {"text"},
			"format":        {"json"},
			"formatversion": {"2"},
		}, 10<<20)
		if err != nil {
			return Page{}, err
		}

		var env parseEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return Page{}, fmt.Errorf("decoding wiki parse response: %w", err)
		}
		if env.Error != nil {
			return Page{}, env.Error.toErr(fmt.Sprintf("wiki page %q", title))
		}
		if env.Parse == nil {
			return Page{}, fmt.Errorf("wiki parse response missing payload for %q", title)
		}

		page := Page{Title: env.Parse.Title, PageID: env.Parse.PageID, HTML: env.Parse.Text}
		c.pages.Set(key, page)
		return page, nil
	})
	return page, err
}

// PageExists reports whether an article exists without fetching its body.
func (c *Client) PageExists(ctx context.Context, title string) (bool, error) {
	key := cache.Key("wiki_exists", map[string]any{"title": title})
	if hit, ok := c.exists.Get(key); ok {
		return hit, nil
	}

	found, _, err := cache.Do(&c.flight, key, func() (bool, error) {
		body, err := c.get(ctx, url.Values{
			"action":        {"query"},
			"titles":        {title},
			"format":        {"json"},
			"formatversion": {"2"},
		}, 64<<10)
		if err != nil {
			return false, err
		}

		var env existsEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return false, fmt.Errorf("decoding wiki query response: %w", err)
		}
		if env.Error != nil {
			return false, env.Error.toErr(fmt.Sprintf("wiki page %q", title))
		}
		if env.Query == nil || len(env.Query.Pages) == 0 {
			return false, fmt.Errorf("wiki query response missing pages for %q", title)
		}

		found := !env.Query.Pages[0].Missing
		c.exists.Set(key, found)
		return found, nil
	})
	return found, err
}

// CacheStats reports per-cache counters keyed by cache name.
func (c *Client) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"wiki_pages":  c.pages.Snapshot(),
		"wiki_search": c.search.Snapshot(),
		"wiki_exists": c.exists.Snapshot(),
	}
}

func (c *Client) get(ctx context.Context, params url.Values, limit int64) ([]byte, error) {
	u, err := url.Parse(c.base)
	if err != nil {
		return nil, fmt.Errorf("parsing wiki endpoint: %w", err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building wiki request: %w", err)
	}
	req.Header.Set("User-Agent", c.agent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", u.Host, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &types.UpstreamError{Source: "wiki", Status: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}
