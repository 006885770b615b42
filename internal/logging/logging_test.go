package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sweatpet/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"info":  zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for name, want := range tests {
		got, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestFromConfigWritesToDataDir(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Log.Level = "warn"

	logger, err := FromConfig(cfg, "", false)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", zap.Int("steps", 42))
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(cfg.DataDir, "sweatpet.log"))
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, `"steps":42`)
}

func TestFromConfigOutputOverride(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	path := filepath.Join(t.TempDir(), "serve.log")

	logger, err := FromConfig(cfg, path, false)
	require.NoError(t, err)
	logger.Info("listening")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "listening")
	assert.NoFileExists(t, filepath.Join(cfg.DataDir, "sweatpet.log"))
}

func TestVerboseForcesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, err := New("error", path, true)
	require.NoError(t, err)

	logger.Debug("details")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "details"))
}
