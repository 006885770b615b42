package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"sweatpet/internal/config"
)

func setupDataDir(t *testing.T) []string {
	t.Helper()
	t.Setenv(config.EnvTimezone, "UTC")
	t.Setenv(config.EnvBackend, "")
	dir := t.TempDir()
	return []string{"--config", filepath.Join(dir, "config.yaml"), "--data-dir", dir}
}

func TestRun(t *testing.T) {
	global := setupDataDir(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
		wantErr  string
	}{
		{"add steps", []string{"add", "2500"}, 0, "+2500 steps", ""},
		{"stats after add", []string{"stats"}, 0, "2500", ""},
		{"care", []string{"care", "play"}, 0, "Playing", ""},
		{"unknown command", []string{"fly"}, 1, "", "unknown command"},
		{"missing steps", []string{"add"}, 1, "", "step count is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(append(append([]string{}, global...), tt.args...), strings.NewReader(""), &stdout, &stderr)

			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (stderr %q)", code, tt.wantCode, stderr.String())
			}
			if !strings.Contains(stdout.String(), tt.wantOut) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tt.wantOut)
			}
			if !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantErr)
			}
		})
	}
}
