// Package config loads the service configuration from a YAML file, with
// environment variables layered on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListen      = ":8080"
	DefaultDBPath      = "cadence.db"
	DefaultHorizonDays = 365
	DefaultDateLayout  = "1/2/2006"
	DefaultRefreshCron = "0 0 * * *"
	DefaultSessionTTL  = 24
)

// BasicAuthConfig protects settings writes. PasswordHash is a bcrypt hash.
type BasicAuthConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen   string `yaml:"listen"`
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`

	// HorizonDays is how far ahead open-ended rules are previewed, unless
	// overridden by the stored settings.
	HorizonDays int    `yaml:"horizon_days"`
	DateLayout  string `yaml:"date_layout"`

	// RefreshCron schedules the job that re-renders every session's preview
	// and drops idle sessions.
	RefreshCron string `yaml:"refresh_cron"`

	// SessionTTLHours is how long an untouched editing session is kept.
	SessionTTLHours int `yaml:"session_ttl_hours"`

	// BasicAuth, if set, is required for PUT /api/settings.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Listen:          DefaultListen,
		DBPath:          DefaultDBPath,
		LogLevel:        "info",
		HorizonDays:     DefaultHorizonDays,
		DateLayout:      DefaultDateLayout,
		RefreshCron:     DefaultRefreshCron,
		SessionTTLHours: DefaultSessionTTL,
	}
}

// Normalize fills zero values with defaults so partial files behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = DefaultHorizonDays
	}
	if c.DateLayout == "" {
		c.DateLayout = DefaultDateLayout
	}
	if c.RefreshCron == "" {
		c.RefreshCron = DefaultRefreshCron
	}
	if c.SessionTTLHours <= 0 {
		c.SessionTTLHours = DefaultSessionTTL
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" && c.BasicAuth.PasswordHash == "" {
		c.BasicAuth = nil
	}
}

// Load reads the YAML file at path. A missing file (or an empty path) yields
// the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// ApplyEnv overrides fields from CADENCE_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if port := getenv("CADENCE_PORT"); port != "" {
		c.Listen = ":" + port
	}
	if v := getenv("CADENCE_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := getenv("CADENCE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("CADENCE_HORIZON_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CADENCE_HORIZON_DAYS: %w", err)
		}
		c.HorizonDays = n
	}
	return nil
}

// Save writes cfg to path with 0600 permissions, replacing any existing file
// atomically.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cadence-config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
