// ABOUTME: Player hiscores collaborator parsing the index_lite CSV table
// ABOUTME: Fixed skill order; 404 means unknown player, short rows mean upstream breakage

package hiscores

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gielinor/osrsdex/internal/cache"
	"github.com/gielinor/osrsdex/internal/types"
)

// skillNames is the fixed row order of the index_lite response. The endpoint
// has no header row; position is the only schema.
var skillNames = []string{
	"Overall", "Attack", "Defence", "Strength", "Hitpoints", "Ranged",
	"Prayer", "Magic", "Cooking", "Woodcutting", "Fletching", "Fishing",
	"Firemaking", "Crafting", "Smithing", "Mining", "Herblore", "Agility",
	"Thieving", "Slayer", "Farming", "Runecraft", "Hunter", "Construction",
}

// Doer is the HTTP collaborator contract; *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Skill is one hiscore row. Rank -1 means unranked.
type Skill struct {
	Name  string `json:"name"`
	Rank  int    `json:"rank"`
	Level int    `json:"level"`
	XP    int64  `json:"xp"`
}

// Stats is a player's full skill table.
type Stats struct {
	Player string  `json:"player"`
	Skills []Skill `json:"skills"`
}

// Client fetches player stats from the hiscores endpoint.
type Client struct {
	base   string
	agent  string
	http   Doer
	stats  *cache.ResponseCache[Stats]
	flight cache.Flight
}

// New returns a client for the index_lite endpoint at base.
func New(base, agent string, client Doer, ttl time.Duration, maxEntries int, policy string) *Client {
	return &Client{
		base:  base,
		agent: agent,
		http:  client,
		stats: cache.NewResponseCache[Stats](ttl, maxEntries, cache.NewStrategy(policy, maxEntries)),
	}
}

// Lookup returns the skill table for a player. An unknown player wraps
// ErrNotFound; the endpoint reports it as a 404.
func (c *Client) Lookup(ctx context.Context, player string) (Stats, error) {
	key := cache.Key("hiscores", map[string]any{"player": strings.ToLower(player)})
	if hit, ok := c.stats.Get(key); ok {
		return hit, nil
	}

	stats, _, err := cache.Do(&c.flight, key, func() (Stats, error) {
		u, err := url.Parse(c.base)
		if err != nil {
			return Stats{}, fmt.Errorf("parsing hiscores endpoint: %w", err)
		}
		q := u.Query()
		q.Set("player", player)
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return Stats{}, fmt.Errorf("building hiscores request: %w", err)
		}
		req.Header.Set("User-Agent", c.agent)

		resp, err := c.http.Do(req)
		if err != nil {
			return Stats{}, fmt.Errorf("requesting %s: %w", u.Host, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return Stats{}, fmt.Errorf("player %q: %w", player, types.ErrNotFound)
		}
		if resp.StatusCode != http.StatusOK {
			return Stats{}, &types.UpstreamError{Source: "hiscores", Status: resp.StatusCode}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 256<<10))
		if err != nil {
			return Stats{}, fmt.Errorf("reading hiscores response: %w", err)
		}

		stats, err := parseTable(player, string(body))
		if err != nil {
			return Stats{}, err
		}
		c.stats.Set(key, stats)
		return stats, nil
	})
	return stats, err
}

// parseTable decodes the positional rank,level,xp rows. Rows beyond the
// known skills are activity scores and are ignored.
func parseTable(player, body string) (Stats, error) {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) < len(skillNames) {
		return Stats{}, fmt.Errorf("hiscores response has %d rows, want %d", len(lines), len(skillNames))
	}

	stats := Stats{Player: player, Skills: make([]Skill, 0, len(skillNames))}
	for i, name := range skillNames {
		fields := strings.Split(strings.TrimSpace(lines[i]), ",")
		if len(fields) < 3 {
			return Stats{}, fmt.Errorf("malformed hiscores row %d: %q", i, lines[i])
		}
		rank, err := strconv.Atoi(fields[0])
		if err != nil {
			return Stats{}, fmt.Errorf("malformed rank in row %d: %q", i, lines[i])
		}
		level, err := strconv.Atoi(fields[1])
		if err != nil {
			return Stats{}, fmt.Errorf("malformed level in row %d: %q", i, lines[i])
		}
		xp, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return Stats{}, fmt.Errorf("malformed xp in row %d: %q", i, lines[i])
		}
		stats.Skills = append(stats.Skills, Skill{Name: name, Rank: rank, Level: level, XP: xp})
	}
	return stats, nil
}

// CacheStats reports the stats cache counters.
func (c *Client) CacheStats() cache.Stats {
	return c.stats.Snapshot()
}
