package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override config.yaml.
const (
	EnvAPIURL    = "INTERVIEWER_API_URL"
	EnvLegacyURL = "NEXT_PUBLIC_API_URL"
	EnvLanguage  = "INTERVIEWER_LANGUAGE"
)

// LoadDotEnv loads KEY=value pairs from .env files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", filepath.Base(p), err)
		}
	}
	return nil
}

// ApplyEnv overlays environment overrides onto cfg. lookup is usually
// os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIURL); ok && strings.TrimSpace(v) != "" {
		cfg.API.BaseURL = strings.TrimSpace(v)
	} else if v, ok := lookup(EnvLegacyURL); ok && strings.TrimSpace(v) != "" {
		cfg.API.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLanguage); ok && strings.TrimSpace(v) != "" {
		cfg.Language = strings.ToLower(strings.TrimSpace(v))
	}
}
