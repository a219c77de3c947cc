// ABOUTME: Bounded in-memory TTL cache for assembled tool responses
// ABOUTME: Thread-safe; eviction order delegated to a pluggable Strategy

package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	created time.Time
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Size        int    `json:"size"`
	MaxEntries  int    `json:"max_entries"`
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
}

// ResponseCache is a TTL cache holding at most maxEntries values. When full,
// the configured Strategy picks the victim. Expiry is checked lazily on read;
// an entry is stale once its age exceeds the TTL.
type ResponseCache[V any] struct {
	mu       sync.Mutex
	entries  map[string]entry[V]
	strategy Strategy
	ttl      time.Duration
	max      int
	now      func() time.Time

	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64
}

// NewResponseCache builds a cache with the given TTL, capacity, and eviction
// strategy. A nil strategy falls back to FIFO.
func NewResponseCache[V any](ttl time.Duration, maxEntries int, strategy Strategy) *ResponseCache[V] {
	if maxEntries < 1 {
		maxEntries = 1
	}
	if strategy == nil {
		strategy = NewStrategy(PolicyFIFO, maxEntries)
	}
	return &ResponseCache[V]{
		entries:  make(map[string]entry[V]),
		strategy: strategy,
		ttl:      ttl,
		max:      maxEntries,
		now:      time.Now,
	}
}

// Get returns the cached value for key if present and fresh.
func (c *ResponseCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if c.now().Sub(e.created) > c.ttl {
		delete(c.entries, key)
		c.strategy.Remove(key)
		c.expirations++
		c.misses++
		return zero, false
	}
	c.strategy.Touch(key)
	c.hits++
	return e.value, true
}

// Set stores value under key, evicting one victim first if the cache is at
// capacity and key is not already present. Overwriting refreshes the entry's
// timestamp and its position in the eviction order.
func (c *ResponseCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		if victim, ok := c.strategy.Victim(); ok {
			delete(c.entries, victim)
			c.evictions++
		}
	}
	c.entries[key] = entry[V]{value: value, created: c.now()}
	c.strategy.Admit(key)
}

// Delete removes a single key.
func (c *ResponseCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.strategy.Remove(key)
	}
}

// Purge empties the cache. Counters are kept; they describe lifetime totals.
func (c *ResponseCache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry[V])
	c.strategy.Reset()
}

// Len returns the number of live entries, including any not yet noticed as
// expired.
func (c *ResponseCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Snapshot returns current counters.
func (c *ResponseCache[V]) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:        len(c.entries),
		MaxEntries:  c.max,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}
}
