// ABOUTME: Environment variable expansion and override handling for Settings
// ABOUTME: Replaces ${VAR} patterns and applies OSRSDEX_* process overrides

package config

import (
	"os"
	"regexp"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ResolveEnvVars expands ${VAR} patterns in string fields of Settings.
func ResolveEnvVars(s *Settings) {
	s.DataDir = expandEnv(s.DataDir)
	s.UserAgent = expandEnv(s.UserAgent)
	s.WikiAPIURL = expandEnv(s.WikiAPIURL)
	s.PricesAPIURL = expandEnv(s.PricesAPIURL)
	s.HiscoresURL = expandEnv(s.HiscoresURL)
	s.MonstersURL = expandEnv(s.MonstersURL)

	for k, v := range s.Env {
		s.Env[k] = expandEnv(v)
	}
}

// ApplyEnvOverrides applies OSRSDEX_* process environment variables on top
// of file-based settings. Startup refresh stays opt-in so a bare `serve`
// never performs network writes into the data directory.
func ApplyEnvOverrides(s *Settings) {
	if v := os.Getenv("OSRSDEX_DATA_DIR"); v != "" {
		s.DataDir = v
	}
	if v := os.Getenv("OSRSDEX_USER_AGENT"); v != "" {
		s.UserAgent = v
	}
	if truthy(os.Getenv("OSRSDEX_REFRESH_SOUNDS")) {
		s.RefreshSounds = true
	}
	if truthy(os.Getenv("OSRSDEX_REFRESH_MONSTERS")) {
		s.RefreshMonsters = true
	}
}

// expandEnv replaces ${VAR} with os.Getenv(VAR). Unset vars become "".
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
