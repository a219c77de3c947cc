// ABOUTME: Tool type shared by every transport-visible operation
// ABOUTME: Execute returns a serializable payload; lookup misses are in-band payloads, not errors

package tools

import (
	"context"
	"encoding/json"
)

// Tool is one callable operation: its wire name, a human description, the
// JSON schema its arguments must satisfy, and the handler. Handlers may
// trust that arguments passed validation.
type Tool struct {
	Name        string
	Description string
	Schema      json.RawMessage
	Execute     func(ctx context.Context, args map[string]any) (any, error)
}
