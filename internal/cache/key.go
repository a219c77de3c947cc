// ABOUTME: Deterministic cache key construction from action name and parameters
// ABOUTME: json.Marshal sorts map keys, so identical requests hash identically

package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Key creates a deterministic key from an action name and its parameters.
// The action stays readable as a prefix; the parameters collapse to a hash.
func Key(action string, params map[string]any) string {
	data, _ := json.Marshal(params)
	h := sha256.Sum256(append([]byte(action+"|"), data...))
	return fmt.Sprintf("%s|%x", action, h[:16])
}
