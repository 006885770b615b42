// Package config loads sweatpet settings from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"sweatpet/internal/store"
)

// Environment variables applied after the file
const (
	EnvDataDir  = "SWEATPET_DATA_DIR"
	EnvBackend  = "SWEATPET_BACKEND"
	EnvTimezone = "SWEATPET_TIMEZONE"
	EnvLogLevel = "SWEATPET_LOG_LEVEL"
	EnvAddr     = "SWEATPET_ADDR"
)

// DefaultAddr is the local server address
const DefaultAddr = "127.0.0.1:3002"

type Config struct {
	DataDir  string       `yaml:"data_dir"`
	Backend  string       `yaml:"backend"` // file, sqlite, memory
	Timezone string       `yaml:"timezone"`
	Log      LogConfig    `yaml:"log"`
	Server   ServerConfig `yaml:"server"`
	Watch    WatchConfig  `yaml:"watch"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type WatchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Debounce string `yaml:"debounce"`
}

// DefaultDataDir returns ~/.sweatpet, or a relative directory when the home
// directory is unknown
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sweatpet"
	}
	return filepath.Join(home, ".sweatpet")
}

// DefaultPath returns the config file location under the user config dir
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(DefaultDataDir(), "config.yaml")
	}
	return filepath.Join(dir, "sweatpet", "config.yaml")
}

func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Backend: store.BackendFile,
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: "200ms",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks every field that is parsed later
func (c *Config) Validate() error {
	if c.DataDir == "" && c.Backend != store.BackendMemory {
		return errors.New("data_dir is required")
	}
	switch c.Backend {
	case store.BackendFile, store.BackendSQLite, store.BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.DebounceDuration(); err != nil {
		return err
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// Location returns the time zone that defines a calendar day. Empty means
// the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DebounceDuration parses watch.debounce
func (c *Config) DebounceDuration() (time.Duration, error) {
	if c.Watch.Debounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, fmt.Errorf("invalid watch.debounce %q: %w", c.Watch.Debounce, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid watch.debounce %q: negative", c.Watch.Debounce)
	}
	return d, nil
}

// LogFile returns the log output path, defaulting to a file in the data dir
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, "sweatpet.log")
}

func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
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
