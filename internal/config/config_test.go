package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvDataDir, EnvBackend, EnvTimezone, EnvLogLevel, EnvAddr} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Backend)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.True(t, cfg.Watch.Enabled)
	assert.NoError(t, cfg.Validate())

	d, err := cfg.DebounceDuration()
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, d)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /tmp/pets
backend: sqlite
timezone: Europe/Berlin
log:
  level: debug
server:
  addr: 0.0.0.0:9000
watch:
  enabled: false
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pets", cfg.DataDir)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, "200ms", cfg.Watch.Debounce, "unset keys keep their defaults")

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: sqlite\ndata_dir: /from/file\n"), 0644))

	t.Setenv(EnvDataDir, "/from/env")
	t.Setenv(EnvBackend, "memory")
	t.Setenv(EnvTimezone, "UTC")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvAddr, "127.0.0.1:4000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.DataDir)
	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:4000", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"Defaults", func(c *Config) {}, false},
		{"Unknown backend", func(c *Config) { c.Backend = "redis" }, true},
		{"Bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
		{"Bad debounce", func(c *Config) { c.Watch.Debounce = "soon" }, true},
		{"Negative debounce", func(c *Config) { c.Watch.Debounce = "-1s" }, true},
		{"Bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"Memory without dir", func(c *Config) { c.Backend = "memory"; c.DataDir = "" }, false},
		{"File without dir", func(c *Config) { c.DataDir = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLogFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/data"
	assert.Equal(t, filepath.Join("/data", "sweatpet.log"), cfg.LogFile())

	cfg.Log.File = "stderr"
	assert.Equal(t, "stderr", cfg.LogFile())
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Backend = "sqlite"
	cfg.Timezone = "UTC"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
