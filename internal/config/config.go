// Package config loads and validates cleandesk configuration.
// Configuration lives in .cleandesk/config.yaml under the workspace,
// with environment variables taking priority over the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all cleandesk configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Processing server connection
	Server ServerConfig `yaml:"server"`

	// Download destinations
	Downloads DownloadConfig `yaml:"downloads"`

	// Watch-folder automation
	Watch WatchConfig `yaml:"watch"`

	// Run history journal
	History HistoryConfig `yaml:"history"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the external cleaning server.
type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout for cleaning and pipeline calls. Bulk pipeline runs convert
	// every file server-side before responding, so this is generous.
	Timeout string `yaml:"timeout"`
	// UploadTimeout bounds the multipart upload call separately.
	UploadTimeout string `yaml:"upload_timeout"`
}

// DownloadConfig configures where fetched results are written.
type DownloadConfig struct {
	Dir string `yaml:"dir"`
}

// WatchConfig configures the pipeline drop folder.
type WatchConfig struct {
	Dir string `yaml:"dir"`
	// Debounce is how long the watcher waits after the last file event
	// before submitting the accumulated batch.
	Debounce string `yaml:"debounce"`
}

// HistoryConfig configures the local run journal.
type HistoryConfig struct {
	DatabasePath string `yaml:"database_path"`
	MaxEntries   int    `yaml:"max_entries"`
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "cleandesk",
		Version: "1.2.0",

		Server: ServerConfig{
			BaseURL:       "http://localhost:8080",
			Timeout:       "10m",
			UploadTimeout: "2m",
		},

		Downloads: DownloadConfig{
			Dir: "downloads",
		},

		Watch: WatchConfig{
			Dir:      "inbox",
			Debounce: "2s",
		},

		History: HistoryConfig{
			DatabasePath: filepath.Join(".cleandesk", "history.db"),
			MaxEntries:   500,
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigPath returns the config file location for a workspace.
func ConfigPath(workspace string) string {
	return filepath.Join(workspace, ".cleandesk", "config.yaml")
}

// Load loads configuration for the given workspace, falling back to
// defaults when no config file exists.
func Load(workspace string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the workspace config path.
func (c *Config) Save(workspace string) error {
	path := ConfigPath(workspace)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("CLEANDESK_SERVER_URL"); url != "" {
		c.Server.BaseURL = url
	}
	if t := os.Getenv("CLEANDESK_TIMEOUT"); t != "" {
		c.Server.Timeout = t
	}
	if dir := os.Getenv("CLEANDESK_DOWNLOAD_DIR"); dir != "" {
		c.Downloads.Dir = dir
	}
	if os.Getenv("CLEANDESK_DEBUG") == "1" {
		c.Logging.DebugMode = true
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	if !strings.HasPrefix(c.Server.BaseURL, "http://") && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		return fmt.Errorf("server.base_url must be an http(s) URL, got %q", c.Server.BaseURL)
	}
	for name, value := range map[string]string{
		"server.timeout":        c.Server.Timeout,
		"server.upload_timeout": c.Server.UploadTimeout,
		"watch.debounce":        c.Watch.Debounce,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", name, value, err)
		}
	}
	return nil
}

// ServerTimeout parses the configured processing timeout.
func (c *Config) ServerTimeout() time.Duration {
	return parseDurationOr(c.Server.Timeout, 10*time.Minute)
}

// UploadTimeout parses the configured upload timeout.
func (c *Config) UploadTimeout() time.Duration {
	return parseDurationOr(c.Server.UploadTimeout, 2*time.Minute)
}

// WatchDebounce parses the configured watcher debounce window.
func (c *Config) WatchDebounce() time.Duration {
	return parseDurationOr(c.Watch.Debounce, 2*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
