package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Transport names accepted in config and on the command line.
const (
	TransportTelegramExport = "telegram-export"
	TransportDiscord        = "discord"
)

// Config holds application configuration.
type Config struct {
	// Transport selects the conversation source backend:
	// "telegram-export" or "discord".
	Transport string `json:"transport"`

	// TelegramExportPath is the path to a Telegram Desktop export
	// directory or its result.json file.
	TelegramExportPath string `json:"telegram_export_path,omitempty"`

	// DiscordToken is the bot token used by the discord transport.
	DiscordToken string `json:"discord_token,omitempty"`

	// FetchFloor is the minimum per-source fetch budget. The budget for a
	// run is max(limit, FetchFloor), so low limits still sample enough
	// candidates from every source.
	FetchFloor int `json:"fetch_floor"`

	// Concurrency bounds how many sources are fetched at once.
	Concurrency int `json:"concurrency"`

	// SourceTimeoutSecs bounds a single source's fetch. 0 disables the
	// per-source timeout.
	SourceTimeoutSecs int `json:"source_timeout_secs,omitempty"`

	// Strict makes any single source's fetch failure abort the whole run.
	// Default is to log and skip the source.
	Strict bool `json:"strict,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from
	// registration. Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Transport:   TransportTelegramExport,
		FetchFloor:  20,
		Concurrency: 8,
	}
}

// SourceTimeout returns the per-source fetch timeout as a duration.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutSecs) * time.Second
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.chatsnap.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.Transport = overlay.Transport
	if result.Transport == "" {
		result.Transport = base.Transport
	}

	result.TelegramExportPath = overlay.TelegramExportPath
	if result.TelegramExportPath == "" {
		result.TelegramExportPath = base.TelegramExportPath
	}

	result.DiscordToken = overlay.DiscordToken
	if result.DiscordToken == "" {
		result.DiscordToken = base.DiscordToken
	}

	result.FetchFloor = overlay.FetchFloor
	if result.FetchFloor == 0 {
		result.FetchFloor = base.FetchFloor
	}

	result.Concurrency = overlay.Concurrency
	if result.Concurrency == 0 {
		result.Concurrency = base.Concurrency
	}

	result.SourceTimeoutSecs = overlay.SourceTimeoutSecs
	if result.SourceTimeoutSecs == 0 {
		result.SourceTimeoutSecs = base.SourceTimeoutSecs
	}

	// Booleans: overlay wins if true, else base
	result.Strict = base.Strict || overlay.Strict

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
