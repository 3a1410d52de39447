// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents the client configuration that can be loaded from a JSON
// file and overridden by environment variables. All fields are optional;
// missing values use defaults.
type Config struct {
	// Endpoints
	APIBaseURL  string `json:"api_base_url,omitempty"`  // Backend REST base URL
	AuthBaseURL string `json:"auth_base_url,omitempty"` // Auth provider base URL
	AuthAnonKey string `json:"auth_anon_key,omitempty"` // Auth provider publishable key
	ReturnURL   string `json:"return_url,omitempty"`    // URL the checkout provider redirects back to

	// Local state
	StateDir string `json:"state_dir,omitempty"` // Directory for the checkpoint store file

	// Behavior
	AdminCheckTimeoutSec int  `json:"admin_check_timeout_sec,omitempty"` // Privilege RPC deadline
	AdminPollIntervalSec int  `json:"admin_poll_interval_sec,omitempty"` // Unread-ticket poll interval
	Verbose              bool `json:"verbose,omitempty"`                 // Print detailed debug information
}

// Default endpoint and timing values applied by MergeWithDefaults.
const (
	DefaultAdminCheckTimeoutSec = 5
	DefaultAdminPollIntervalSec = 30
)

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Unset variables leave
// the zero value so MergeWithDefaults can fill them.
func FromEnv() Config {
	cfg := Config{
		APIBaseURL:  os.Getenv("BLAST_API_URL"),
		AuthBaseURL: os.Getenv("BLAST_AUTH_URL"),
		AuthAnonKey: os.Getenv("BLAST_AUTH_ANON_KEY"),
		ReturnURL:   os.Getenv("BLAST_RETURN_URL"),
		StateDir:    os.Getenv("BLAST_STATE_DIR"),
	}
	if v := os.Getenv("BLAST_ADMIN_CHECK_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AdminCheckTimeoutSec = n
		}
	}
	if v := os.Getenv("BLAST_ADMIN_POLL_INTERVAL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AdminPollIntervalSec = n
		}
	}
	if v := os.Getenv("BLAST_VERBOSE"); v == "1" || v == "true" {
		cfg.Verbose = true
	}
	return cfg
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("config error: 'api_base_url' is required")
	}
	for name, raw := range map[string]string{
		"api_base_url":  c.APIBaseURL,
		"auth_base_url": c.AuthBaseURL,
		"return_url":    c.ReturnURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config error: '%s' is not a valid URL: %s", name, raw)
		}
	}
	if c.AdminCheckTimeoutSec < 0 {
		return fmt.Errorf("config error: 'admin_check_timeout_sec' must be non-negative")
	}
	if c.AdminPollIntervalSec < 0 {
		return fmt.Errorf("config error: 'admin_poll_interval_sec' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults, then from built-in fallbacks.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIBaseURL == "" {
		result.APIBaseURL = defaults.APIBaseURL
	}
	if result.AuthBaseURL == "" {
		result.AuthBaseURL = defaults.AuthBaseURL
	}
	if result.AuthAnonKey == "" {
		result.AuthAnonKey = defaults.AuthAnonKey
	}
	if result.ReturnURL == "" {
		result.ReturnURL = defaults.ReturnURL
	}
	if result.StateDir == "" {
		result.StateDir = defaults.StateDir
	}
	if result.StateDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			result.StateDir = filepath.Join(home, ".blastkit")
		} else {
			result.StateDir = ".blastkit"
		}
	}

	if result.AdminCheckTimeoutSec == 0 {
		result.AdminCheckTimeoutSec = defaults.AdminCheckTimeoutSec
	}
	if result.AdminCheckTimeoutSec == 0 {
		result.AdminCheckTimeoutSec = DefaultAdminCheckTimeoutSec
	}
	if result.AdminPollIntervalSec == 0 {
		result.AdminPollIntervalSec = defaults.AdminPollIntervalSec
	}
	if result.AdminPollIntervalSec == 0 {
		result.AdminPollIntervalSec = DefaultAdminPollIntervalSec
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// AdminCheckTimeout returns the privilege RPC deadline as a duration.
func (c *Config) AdminCheckTimeout() time.Duration {
	return time.Duration(c.AdminCheckTimeoutSec) * time.Second
}

// AdminPollInterval returns the unread-ticket poll interval as a duration.
func (c *Config) AdminPollInterval() time.Duration {
	return time.Duration(c.AdminPollIntervalSec) * time.Second
}
