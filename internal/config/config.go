// ABOUTME: Configuration: JSON file at the XDG config path with env overrides.
// ABOUTME: Mints a persistent device id on first run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/oklog/ulid/v2"
)

// Config stores lift settings.
type Config struct {
	// Server is the workout API base URL.
	Server string `json:"server" env:"LIFT_SERVER"`

	// Token is the bearer auth token for the workout API.
	Token string `json:"token,omitempty" env:"LIFT_TOKEN"`

	// DeviceID identifies this installation. Generated on first run.
	DeviceID string `json:"device_id"`

	// DataDir is the root directory for local data. The badger store lives
	// in lift.db/ underneath it. Supports ~ expansion. Defaults to
	// ~/.local/share/lift.
	DataDir string `json:"data_dir,omitempty" env:"LIFT_DATA_DIR"`
}

// ConfigPath returns the config file path following XDG spec.
func ConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "lift", "config.json")
}

// DataDir returns the default data directory following XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "lift")
}

// GetDataDir returns the configured data directory with ~ expanded.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return DataDir()
	}
	return ExpandPath(c.DataDir)
}

// DBPath returns the badger store directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "lift.db")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads config from disk, applies environment overrides, and fills
// defaults. A missing file yields a usable default config.
func Load() (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(ConfigPath())
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DeviceID == "" {
		cfg.DeviceID = ulid.Make().String()
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("persist device id: %w", err)
		}
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
