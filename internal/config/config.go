// Package config loads the sighub server configuration.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "sighub.json"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultHubPath is the default mount point for the hub routes.
	DefaultHubPath = "/hub"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "sigslot"

	// DefaultLogLevel is the default slog level.
	DefaultLogLevel = "info"

	// DefaultWriteTimeout is the default WebSocket write timeout.
	DefaultWriteTimeout = "10s"
)

// Config represents the complete sighub.json configuration.
type Config struct {
	// Addr is the address the server listens on.
	Addr string `json:"addr,omitempty"`

	// HubPath is the URL prefix the hub routes are mounted under.
	HubPath string `json:"hubPath,omitempty"`

	// MetricsNamespace is the Prometheus namespace for emission metrics.
	MetricsNamespace string `json:"metricsNamespace,omitempty"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `json:"logLevel,omitempty"`

	// WriteTimeout is the WebSocket write timeout (e.g. "10s").
	WriteTimeout string `json:"writeTimeout,omitempty"`

	// configPath stores the path the config was loaded from.
	configPath string
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		Addr:             DefaultAddr,
		HubPath:          DefaultHubPath,
		MetricsNamespace: DefaultMetricsNamespace,
		LogLevel:         DefaultLogLevel,
		WriteTimeout:     DefaultWriteTimeout,
	}
}

// Load reads and validates a configuration file. Missing fields take
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.configPath = path

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists and falls back to defaults
// otherwise. Parse and validation errors are still reported.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Path returns the path the config was loaded from, or the empty string
// for a default configuration.
func (c *Config) Path() string {
	return c.configPath
}

// SlogLevel converts LogLevel to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WriteTimeoutDuration parses WriteTimeout.
func (c *Config) WriteTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.WriteTimeout)
	if err != nil {
		d, _ = time.ParseDuration(DefaultWriteTimeout)
	}
	return d
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid logLevel %q", c.LogLevel)
	}
	if _, err := time.ParseDuration(c.WriteTimeout); err != nil {
		return fmt.Errorf("config: invalid writeTimeout %q: %w", c.WriteTimeout, err)
	}
	return nil
}
