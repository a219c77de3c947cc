// ABOUTME: Live item price collaborator for the real-time prices API
// ABOUTME: Per-item latest high/low quotes, cached and coalesced

package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gielinor/osrsdex/internal/cache"
	"github.com/gielinor/osrsdex/internal/types"
)

// Doer is the HTTP collaborator contract; *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Quote is the latest instant-buy/instant-sell pair for one item. A nil
// price means no recorded trade on that side.
type Quote struct {
	High     *int   `json:"high"`
	HighTime *int64 `json:"high_time"`
	Low      *int   `json:"low"`
	LowTime  *int64 `json:"low_time"`
}

type wireQuote struct {
	High     *int   `json:"high"`
	HighTime *int64 `json:"highTime"`
	Low      *int   `json:"low"`
	LowTime  *int64 `json:"lowTime"`
}

type latestEnvelope struct {
	Data map[string]wireQuote `json:"data"`
}

// Client fetches latest quotes from the prices endpoint.
type Client struct {
	base   string
	agent  string
	http   Doer
	quotes *cache.ResponseCache[Quote]
	flight cache.Flight
}

// New returns a client for the latest-price endpoint at base. The API bans
// anonymous user agents, so agent must identify this tool.
func New(base, agent string, client Doer, ttl time.Duration, maxEntries int, policy string) *Client {
	return &Client{
		base:   base,
		agent:  agent,
		http:   client,
		quotes: cache.NewResponseCache[Quote](ttl, maxEntries, cache.NewStrategy(policy, maxEntries)),
	}
}

// Latest returns the current quote for an item id. An id the exchange does
// not track wraps ErrNotFound.
func (c *Client) Latest(ctx context.Context, itemID int) (Quote, error) {
	key := cache.Key("price", map[string]any{"id": itemID})
	if hit, ok := c.quotes.Get(key); ok {
		return hit, nil
	}

	quote, _, err := cache.Do(&c.flight, key, func() (Quote, error) {
		u, err := url.Parse(c.base)
		if err != nil {
			return Quote{}, fmt.Errorf("parsing prices endpoint: %w", err)
		}
		q := u.Query()
		q.Set("id", strconv.Itoa(itemID))
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return Quote{}, fmt.Errorf("building prices request: %w", err)
		}
		req.Header.Set("User-Agent", c.agent)

		resp, err := c.http.Do(req)
		if err != nil {
			return Quote{}, fmt.Errorf("requesting %s: %w", u.Host, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return Quote{}, &types.UpstreamError{Source: "prices", Status: resp.StatusCode}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return Quote{}, fmt.Errorf("reading prices response: %w", err)
		}
		var env latestEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return Quote{}, fmt.Errorf("decoding prices response: %w", err)
		}

		w, ok := env.Data[strconv.Itoa(itemID)]
		if !ok {
			return Quote{}, fmt.Errorf("no price data for item %d: %w", itemID, types.ErrNotFound)
		}
		quote := Quote{High: w.High, HighTime: w.HighTime, Low: w.Low, LowTime: w.LowTime}
		c.quotes.Set(key, quote)
		return quote, nil
	})
	return quote, err
}

// CacheStats reports the quote cache counters.
func (c *Client) CacheStats() cache.Stats {
	return c.quotes.Snapshot()
}
