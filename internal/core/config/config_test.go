package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(dataDir, "missing.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, DefaultModel, cfg.Oracle.Model)
	assert.Equal(t, 30*time.Second, cfg.Oracle.VoiceTimeout)
	assert.Equal(t, 15*time.Second, cfg.Oracle.SuggestTimeout)
	assert.Equal(t, 30*time.Second, cfg.Oracle.SynthesisTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Capture.MinDuration)
	assert.Equal(t, 10<<20, cfg.Capture.MaxBytes)
	assert.Equal(t, 1<<10, cfg.Capture.MinBytes)
	assert.Equal(t, 5, cfg.Synthesis.SampleSize)
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
oracle:
  model: gemini-2.5-pro
  voice_timeout: 10s
capture:
  min_duration: 750ms
synthesis:
  sample_size: 3
routes:
  - /settings
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-pro", cfg.Oracle.Model)
	assert.Equal(t, 10*time.Second, cfg.Oracle.VoiceTimeout)
	assert.Equal(t, 15*time.Second, cfg.Oracle.SuggestTimeout, "unset fields keep defaults")
	assert.Equal(t, 750*time.Millisecond, cfg.Capture.MinDuration)
	assert.Equal(t, 3, cfg.Synthesis.SampleSize)
	assert.Equal(t, []string{"/settings"}, cfg.Routes)
	assert.Equal(t, 750*time.Millisecond, cfg.Capture.Limits().MinDuration)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "oracle: [not, a, map")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "no data dir", mutate: func(c *Config) { c.DataDir = "" }, wantErr: "data directory"},
		{name: "negative timeout", mutate: func(c *Config) { c.Oracle.VoiceTimeout = -time.Second }, wantErr: "timeouts"},
		{name: "temperature", mutate: func(c *Config) { c.Oracle.Temperature = 3 }, wantErr: "temperature"},
		{name: "byte limits inverted", mutate: func(c *Config) { c.Capture.MinBytes = c.Capture.MaxBytes }, wantErr: "min_bytes"},
		{name: "sample size", mutate: func(c *Config) { c.Synthesis.SampleSize = -1 }, wantErr: "sample_size"},
		{name: "idle above open", mutate: func(c *Config) { c.Database.MaxIdleConns = 20 }, wantErr: "max_idle_conns"},
		{name: "unknown theme", mutate: func(c *Config) { c.Theme = "sepia" }, wantErr: "unknown theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Paths(t *testing.T) {
	cfg := Config{DataDir: "/data/tally"}
	assert.Equal(t, "/data/tally", cfg.DatabaseDir())
	assert.Equal(t, "/data/tally/tally.log", cfg.LogFile())
}
