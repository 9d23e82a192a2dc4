// Package config handles reading and writing the client's config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Version  int           `yaml:"version"`
	API      APIConfig     `yaml:"api"`
	Language string        `yaml:"language"` // "en" | "ru"
	Session  SessionConfig `yaml:"session"`
	Log      LogConfig     `yaml:"log"`
	Cleanup  CleanupConfig `yaml:"cleanup"`
}

// APIConfig locates the interview API.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
}

// SessionConfig controls interview sessions.
type SessionConfig struct {
	// ResumeDrafts restores the drafts of the last unfinished attempt when
	// the same interview is taken again.
	ResumeDrafts bool `yaml:"resume_drafts"`
}

// LogConfig controls the JSONL event log.
type LogConfig struct {
	Enabled bool `yaml:"enabled"`
}

// CleanupConfig controls pruning of finished attempts.
type CleanupConfig struct {
	MaxAgeDays int `yaml:"max_age_days"`
}

const (
	appDir     = "interviewer"
	configFile = "config.yaml"
)

// DefaultStateDir returns the per-user directory holding config, database and log.
func DefaultStateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(base, appDir), nil
}

// ReadConfig reads config.yaml from the given state directory.
// Returns an error if the file is not found or YAML is malformed.
// Fields missing from the file keep their defaults.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads config.yaml, falling back to DefaultConfig when the
// file does not exist yet.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := ReadConfig(dir)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return nil, err
}

// WriteConfig writes cfg to config.yaml in the given state directory.
// Creates the directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			UserAgent: "interviewer-cli",
		},
		Language: "en",
		Session: SessionConfig{
			ResumeDrafts: true,
		},
		Log: LogConfig{
			Enabled: true,
		},
		Cleanup: CleanupConfig{
			MaxAgeDays: 30,
		},
	}
}
