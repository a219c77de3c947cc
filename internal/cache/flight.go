// ABOUTME: In-flight request coalescing built on x/sync singleflight
// ABOUTME: Concurrent identical calls share one execution, result or error

package cache

import (
	"golang.org/x/sync/singleflight"
)

// Flight deduplicates concurrent calls by key. The first caller executes;
// callers arriving while it runs wait and receive the same result or error.
// Once a call settles its key is forgotten, so later callers start fresh.
// The zero value is ready to use.
type Flight struct {
	g singleflight.Group
}

// Do executes fn under key with coalescing applied. The second return
// reports whether the result was shared with other callers.
func Do[V any](f *Flight, key string, fn func() (V, error)) (V, bool, error) {
	v, err, shared := f.g.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero V
		return zero, shared, err
	}
	return v.(V), shared, nil
}

// Forget drops any in-flight tracking for key, forcing the next caller to
// execute rather than join.
func (f *Flight) Forget(key string) {
	f.g.Forget(key)
}
