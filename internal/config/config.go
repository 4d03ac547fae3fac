// Package config loads the application configuration from TOML files with
// environment variable overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: $XDG_CONFIG_HOME/chime/config.toml, ~/.config/chime/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	// Try loading from file
	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	path := filepath.Join(xdgConfig, "chime", "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("CHIME_PORT"); v != "" {
		cfg.Server.Port = v
	}

	// MPD
	if v := os.Getenv("CHIME_MPD_HOST"); v != "" {
		cfg.MPD.Host = v
	}
	if v := os.Getenv("CHIME_MPD_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.MPD.Port = i
		}
	}
	if v := os.Getenv("CHIME_MPD_PASSWORD"); v != "" {
		cfg.MPD.Password = v
	}

	// Catalog
	if v := os.Getenv("CHIME_CATALOG_CLIENT_ID"); v != "" {
		cfg.Catalog.ClientID = v
	}
	if v := os.Getenv("CHIME_CATALOG_CLIENT_SECRET"); v != "" {
		cfg.Catalog.ClientSecret = v
	}

	// Bio
	if v := os.Getenv("CHIME_BIO_API_KEY"); v != "" {
		cfg.Bio.APIKey = v
	}

	// Storage
	if v := os.Getenv("CHIME_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}

	// Log
	if v := os.Getenv("CHIME_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
