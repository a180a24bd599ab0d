// Package config provides configuration management for campusnet.
//
// The config file holds server settings; the campus graph itself lives in
// the database and can be reset without touching the config.
//
// Config file locations (priority order):
//  1. $CAMPUSNET_CONFIG
//  2. ./campusnet.yaml
//  3. $XDG_CONFIG_HOME/campusnet/config.yaml
//  4. ~/.config/campusnet/config.yaml
//  5. /etc/campusnet/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr         = ":3000"
	DefaultDBPath       = "./campusnet.db"
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultMaxBodyBytes = 10 << 20
	DefaultDebounce     = 500 * time.Millisecond
	DefaultStrategy     = "replace"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path. Keys missing from the
// file keep their defaults.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Addr:         DefaultAddr,
			ReadTimeout:  Duration(DefaultReadTimeout),
			WriteTimeout: Duration(DefaultWriteTimeout),
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		Database: DatabaseConfig{Path: DefaultDBPath},
		Watch: WatchConfig{
			Debounce: Duration(DefaultDebounce),
			Strategy: DefaultStrategy,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// applyDefaults fills in values that were explicitly left empty
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(DefaultReadTimeout)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(DefaultWriteTimeout)
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDBPath
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(DefaultDebounce)
	}
	if c.Watch.Strategy == "" {
		c.Watch.Strategy = DefaultStrategy
	}
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Server.ReadTimeout < 0 {
		result = multierror.Append(result, fmt.Errorf("server.read_timeout must not be negative"))
	}
	if c.Server.WriteTimeout < 0 {
		result = multierror.Append(result, fmt.Errorf("server.write_timeout must not be negative"))
	}
	if c.Server.MaxBodyBytes < 0 {
		result = multierror.Append(result, fmt.Errorf("server.max_body_bytes must not be negative"))
	}
	if c.Watch.Debounce < 0 {
		result = multierror.Append(result, fmt.Errorf("watch.debounce must not be negative"))
	}
	if c.Watch.Strategy != "merge" && c.Watch.Strategy != "replace" {
		result = multierror.Append(result, fmt.Errorf("watch.strategy %q must be merge or replace", c.Watch.Strategy))
	}

	return result.ErrorOrNil()
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Listen: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	summary += fmt.Sprintf("Timeouts: read %s, write %s, Max body: %d bytes\n",
		c.Server.ReadTimeout.Duration(), c.Server.WriteTimeout.Duration(), c.Server.MaxBodyBytes)
	if c.Watch.Path != "" {
		summary += fmt.Sprintf("Watching %s (%s, debounce %s)\n", c.Watch.Path, c.Watch.Strategy, c.Watch.Debounce.Duration())
	}
	summary += fmt.Sprintf("Metrics: %v", c.Metrics.Enabled)
	return summary
}
