// ABOUTME: Shared helper functions for tool parameter extraction
// ABOUTME: Provides type-safe parameter accessors used by all tool implementations

package tools

import (
	"fmt"
	"math"
)

// requireStringParam extracts a required string parameter from the args map.
func requireStringParam(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string, got %T", key, v)
	}
	return s, nil
}

// stringParam extracts an optional string parameter with a default value.
func stringParam(params map[string]any, key, defaultVal string) string {
	v, ok := params[key]
	if !ok {
		return defaultVal
	}
	s, ok := v.(string)
	if !ok {
		return defaultVal
	}
	return s
}

// intParam extracts an optional integer parameter with a default value.
// Handles both float64 (from JSON unmarshal) and int types.
func intParam(params map[string]any, key string, defaultVal int) int {
	v, ok := params[key]
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n > float64(math.MaxInt) || n < float64(math.MinInt) {
			return defaultVal
		}
		return int(n)
	case int:
		return n
	default:
		return defaultVal
	}
}

// requireIntParam extracts a required integer parameter from the args map.
func requireIntParam(params map[string]any, key string) (int, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing required parameter %q", key)
	}
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, fmt.Errorf("parameter %q must be an integer", key)
		}
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("parameter %q must be an integer, got %T", key, v)
	}
}

// floatParam extracts an optional float parameter with a default value.
func floatParam(params map[string]any, key string, defaultVal float64) float64 {
	v, ok := params[key]
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return defaultVal
		}
		return n
	case int:
		return float64(n)
	default:
		return defaultVal
	}
}

// boolParam extracts an optional boolean parameter with a default value.
func boolParam(params map[string]any, key string, defaultVal bool) bool {
	v, ok := params[key]
	if !ok {
		return defaultVal
	}
	b, ok := v.(bool)
	if !ok {
		return defaultVal
	}
	return b
}

// requireIntSliceParam extracts a required []int from a JSON-decoded []any.
func requireIntSliceParam(params map[string]any, key string) ([]int, error) {
	v, ok := params[key]
	if !ok {
		return nil, fmt.Errorf("missing required parameter %q", key)
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("parameter %q must be an array, got %T", key, v)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("parameter %q must not be empty", key)
	}
	out := make([]int, 0, len(raw))
	for i, elem := range raw {
		n, ok := elem.(float64)
		if !ok || n != math.Trunc(n) {
			return nil, fmt.Errorf("parameter %q[%d] must be an integer, got %T", key, i, elem)
		}
		out = append(out, int(n))
	}
	return out, nil
}

// stringSliceParam extracts an optional []string from a JSON-decoded []any.
// Missing or mistyped values yield nil; non-string elements are dropped.
func stringSliceParam(params map[string]any, key string) []string {
	raw, ok := params[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, elem := range raw {
		if s, ok := elem.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// errPayload builds the in-band error payload lookup tools return when the
// requested entity does not exist. The call itself still succeeds.
func errPayload(format string, a ...any) map[string]string {
	return map[string]string{"error": fmt.Sprintf(format, a...)}
}
