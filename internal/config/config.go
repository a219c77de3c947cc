// ABOUTME: Settings loading with global + project config deep merge
// ABOUTME: JSON-based configuration using encoding/json; no external libs

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Default durations and limits applied when a field is absent.
const (
	DefaultFileCacheTTL     = time.Hour
	DefaultResponseCacheTTL = 30 * time.Minute
	DefaultResponseCacheMax = 500
	DefaultRequestTimeout   = 30 * time.Second
	DefaultSnapshotMaxAge   = 24 * time.Hour
)

// Default upstream endpoints.
const (
	DefaultWikiAPIURL   = "https://oldschool.runescape.wiki/api.php"
	DefaultPricesAPIURL = "https://prices.runescape.wiki/api/v1/osrs/latest"
	DefaultHiscoresURL  = "https://secure.runescape.com/m=hiscore_oldschool/index_lite.ws"
	DefaultMonstersURL  = "https://raw.githubusercontent.com/0xNeffarion/osrsreboxed-db/master/docs/monsters-complete.json"
	DefaultUserAgent    = "osrsdex/1.0 (github.com/gielinor/osrsdex)"
)

// Settings holds the merged configuration.
type Settings struct {
	DataDir          string            `json:"data_dir,omitempty"`
	UserAgent        string            `json:"user_agent,omitempty"`
	WikiAPIURL       string            `json:"wiki_api_url,omitempty"`
	PricesAPIURL     string            `json:"prices_api_url,omitempty"`
	HiscoresURL      string            `json:"hiscores_url,omitempty"`
	MonstersURL      string            `json:"monsters_url,omitempty"`
	FileCacheTTL     string            `json:"file_cache_ttl,omitempty"`
	ResponseCacheTTL string            `json:"response_cache_ttl,omitempty"`
	ResponseCacheMax int               `json:"response_cache_max,omitempty"`
	EvictionPolicy   string            `json:"eviction_policy,omitempty"`
	RequestTimeout   string            `json:"request_timeout,omitempty"`
	SnapshotMaxAge   string            `json:"snapshot_max_age,omitempty"`
	RefreshSounds    bool              `json:"refresh_sounds,omitempty"`
	RefreshMonsters  bool              `json:"refresh_monsters,omitempty"`
	Env              map[string]string `json:"env,omitempty"`
}

// Load reads and merges global and project-local settings.
// Project settings override global settings.
func Load(projectRoot string) (*Settings, error) {
	global, err := loadFile(GlobalConfigFile())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFile(ProjectConfigFile(projectRoot))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	merged := merge(global, project)
	ResolveEnvVars(merged)
	ApplyEnvOverrides(merged)
	return merged, nil
}

// loadFile reads a Settings from a JSON file. Returns zero Settings if file
// does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge deep-merges project settings onto global settings.
// Non-zero project values override global values.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global

	if project.DataDir != "" {
		result.DataDir = project.DataDir
	}
	if project.UserAgent != "" {
		result.UserAgent = project.UserAgent
	}
	if project.WikiAPIURL != "" {
		result.WikiAPIURL = project.WikiAPIURL
	}
	if project.PricesAPIURL != "" {
		result.PricesAPIURL = project.PricesAPIURL
	}
	if project.HiscoresURL != "" {
		result.HiscoresURL = project.HiscoresURL
	}
	if project.MonstersURL != "" {
		result.MonstersURL = project.MonstersURL
	}
	if project.FileCacheTTL != "" {
		result.FileCacheTTL = project.FileCacheTTL
	}
	if project.ResponseCacheTTL != "" {
		result.ResponseCacheTTL = project.ResponseCacheTTL
	}
	if project.ResponseCacheMax != 0 {
		result.ResponseCacheMax = project.ResponseCacheMax
	}
	if project.EvictionPolicy != "" {
		result.EvictionPolicy = project.EvictionPolicy
	}
	if project.RequestTimeout != "" {
		result.RequestTimeout = project.RequestTimeout
	}
	if project.SnapshotMaxAge != "" {
		result.SnapshotMaxAge = project.SnapshotMaxAge
	}
	if project.RefreshSounds {
		result.RefreshSounds = true
	}
	if project.RefreshMonsters {
		result.RefreshMonsters = true
	}

	// Merge env maps
	if len(project.Env) > 0 {
		if result.Env == nil {
			result.Env = make(map[string]string)
		}
		for k, v := range project.Env {
			result.Env[k] = v
		}
	}

	return &result
}

// FileTTL returns the line-file snapshot TTL, falling back to the default
// when the field is absent or unparsable.
func (s *Settings) FileTTL() time.Duration {
	return parseDuration(s.FileCacheTTL, DefaultFileCacheTTL)
}

// ResponseTTL returns the response cache TTL.
func (s *Settings) ResponseTTL() time.Duration {
	return parseDuration(s.ResponseCacheTTL, DefaultResponseCacheTTL)
}

// Timeout returns the upstream HTTP request timeout.
func (s *Settings) Timeout() time.Duration {
	return parseDuration(s.RequestTimeout, DefaultRequestTimeout)
}

// SnapshotAge returns the maximum age of the on-disk monster snapshot.
func (s *Settings) SnapshotAge() time.Duration {
	return parseDuration(s.SnapshotMaxAge, DefaultSnapshotMaxAge)
}

// MaxEntries returns the response cache entry cap.
func (s *Settings) MaxEntries() int {
	if s.ResponseCacheMax > 0 {
		return s.ResponseCacheMax
	}
	return DefaultResponseCacheMax
}

// Agent returns the User-Agent header value for upstream requests.
func (s *Settings) Agent() string {
	if s.UserAgent != "" {
		return s.UserAgent
	}
	return DefaultUserAgent
}

// WikiAPI returns the MediaWiki api.php endpoint.
func (s *Settings) WikiAPI() string {
	if s.WikiAPIURL != "" {
		return s.WikiAPIURL
	}
	return DefaultWikiAPIURL
}

// PricesAPI returns the latest-prices endpoint.
func (s *Settings) PricesAPI() string {
	if s.PricesAPIURL != "" {
		return s.PricesAPIURL
	}
	return DefaultPricesAPIURL
}

// Hiscores returns the hiscores index_lite endpoint.
func (s *Settings) Hiscores() string {
	if s.HiscoresURL != "" {
		return s.HiscoresURL
	}
	return DefaultHiscoresURL
}

// Monsters returns the monster dataset download URL.
func (s *Settings) Monsters() string {
	if s.MonstersURL != "" {
		return s.MonstersURL
	}
	return DefaultMonstersURL
}

// Data returns the data directory, falling back to the global default.
func (s *Settings) Data() string {
	if s.DataDir != "" {
		return s.DataDir
	}
	return DefaultDataDir()
}

func parseDuration(v string, fallback time.Duration) time.Duration {
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
