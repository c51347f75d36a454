// Package config loads the dscmd TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"dscmd/datastore"

	"github.com/BurntSushi/toml"
)

// Config holds the complete application configuration
type Config struct {
	General    GeneralConfig     `toml:"general"`
	DataStores []DataStoreConfig `toml:"datastores"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	DataDir  string `toml:"data_dir"`
	Library  string `toml:"library"`
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
}

// DataStoreConfig describes one named database connection
type DataStoreConfig struct {
	Name        string            `toml:"name"`
	Driver      string            `toml:"driver"`
	DSN         string            `toml:"dsn"`
	Description string            `toml:"description"`
	Timeout     Duration          `toml:"timeout"`
	Enabled     *bool             `toml:"enabled"`
	Properties  map[string]string `toml:"properties"`
}

// IsEnabled reports whether the datastore should be opened. Stores are enabled unless set otherwise.
func (d DataStoreConfig) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from DSCMD_CONFIG or a default location.
// When no file exists a default configuration without datastores is returned.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("DSCMD_CONFIG")
	if path == "" {
		for _, p := range defaultPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg, nil
	}

	return Load(path)
}

func defaultPaths() []string {
	paths := []string{"./dscmd.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".dscmd", "config.toml"),
			filepath.Join(home, ".config", "dscmd", "config.toml"),
		)
	}
	return paths
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.General.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.General.DataDir = filepath.Join(home, ".dscmd")
		} else {
			c.General.DataDir = ".dscmd"
		}
	}
	if c.General.Library == "" {
		c.General.Library = filepath.Join(c.General.DataDir, "commands.db")
	}
	if c.General.LogFile == "" {
		c.General.LogFile = filepath.Join(c.General.DataDir, "dscmd.log")
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}

	for i := range c.DataStores {
		ds := &c.DataStores[i]
		if ds.Driver == "" {
			ds.Driver = "sqlite"
		}
		if ds.Timeout.Duration == 0 {
			ds.Timeout.Duration = 10 * time.Second
		}
	}
}

// expandEnvVars expands $VAR references in paths and connection strings
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.General.Library = os.ExpandEnv(c.General.Library)
	c.General.LogFile = os.ExpandEnv(c.General.LogFile)
	for i := range c.DataStores {
		c.DataStores[i].DSN = os.ExpandEnv(c.DataStores[i].DSN)
	}
}

// Validate checks datastore definitions for missing or duplicate names.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for i, ds := range c.DataStores {
		if strings.TrimSpace(ds.Name) == "" {
			return fmt.Errorf("datastores[%d]: name is required", i)
		}
		if ds.DSN == "" {
			return fmt.Errorf("datastore %q: dsn is required", ds.Name)
		}
		if !slices.Contains(datastore.Drivers(), ds.Driver) {
			return fmt.Errorf("datastore %q: unsupported driver %q (want one of %s)",
				ds.Name, ds.Driver, strings.Join(datastore.Drivers(), ", "))
		}
		key := strings.ToLower(ds.Name)
		if seen[key] {
			return fmt.Errorf("datastore %q: duplicate name", ds.Name)
		}
		seen[key] = true
	}
	return nil
}
