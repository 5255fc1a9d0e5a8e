// Package config handles configuration loading and validation for tally.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/tally/internal/core/styles"
	"github.com/colonyops/tally/internal/core/voice"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Config holds the application configuration.
type Config struct {
	Oracle    OracleConfig    `yaml:"oracle"`
	Capture   CaptureConfig   `yaml:"capture"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Prompts   PromptsConfig   `yaml:"prompts"`
	Routes    []string        `yaml:"routes"`    // navigate targets allowed besides voice.DefaultRoutes and list routes
	Templates []string        `yaml:"templates"` // template catalog names offered on list suggestion
	Theme     string          `yaml:"theme"`     // CLI colour palette
	DataDir   string          `yaml:"-"`         // set by caller, not from config file
}

// OracleConfig configures the Gemini calls. Timeouts are per call site.
type OracleConfig struct {
	Model            string        `yaml:"model"`
	APIKey           string        `yaml:"api_key"`
	Temperature      float32       `yaml:"temperature"`
	VoiceTimeout     time.Duration `yaml:"voice_timeout"`
	SuggestTimeout   time.Duration `yaml:"suggest_timeout"`
	SynthesisTimeout time.Duration `yaml:"synthesis_timeout"`
}

// CaptureConfig bounds recordings before they are sent anywhere.
type CaptureConfig struct {
	MinDuration time.Duration `yaml:"min_duration"`
	MaxBytes    int           `yaml:"max_bytes"`
	MinBytes    int           `yaml:"min_bytes"`
}

// Limits converts the section into capture limits.
func (c CaptureConfig) Limits() voice.CaptureLimits {
	return voice.CaptureLimits{
		MinDuration: c.MinDuration,
		MaxBytes:    c.MaxBytes,
		MinBytes:    c.MinBytes,
	}
}

// SynthesisConfig controls todo synthesis.
type SynthesisConfig struct {
	// SampleSize is how many existing todos are sent for style matching.
	SampleSize int `yaml:"sample_size"`
}

// DatabaseConfig holds SQLite pool settings.
type DatabaseConfig struct {
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
}

// ServerConfig configures `tally serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// PromptsConfig overrides the built-in oracle instructions. Empty values keep
// the built-in text.
type PromptsConfig struct {
	Intent    string `yaml:"intent"`
	Synthesis string `yaml:"synthesis"`
	Suggest   string `yaml:"suggest"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	limits := voice.DefaultCaptureLimits()
	return Config{
		Oracle: OracleConfig{
			Model:            DefaultModel,
			Temperature:      0.2,
			VoiceTimeout:     30 * time.Second,
			SuggestTimeout:   15 * time.Second,
			SynthesisTimeout: 30 * time.Second,
		},
		Capture: CaptureConfig{
			MinDuration: limits.MinDuration,
			MaxBytes:    limits.MaxBytes,
			MinBytes:    limits.MinBytes,
		},
		Synthesis: SynthesisConfig{
			SampleSize: 5,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5 * time.Second,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7420",
		},
		Theme: styles.DefaultTheme,
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Oracle.Model == "" {
		c.Oracle.Model = defaults.Oracle.Model
	}
	if c.Oracle.VoiceTimeout == 0 {
		c.Oracle.VoiceTimeout = defaults.Oracle.VoiceTimeout
	}
	if c.Oracle.SuggestTimeout == 0 {
		c.Oracle.SuggestTimeout = defaults.Oracle.SuggestTimeout
	}
	if c.Oracle.SynthesisTimeout == 0 {
		c.Oracle.SynthesisTimeout = defaults.Oracle.SynthesisTimeout
	}
	if c.Capture.MinDuration == 0 {
		c.Capture.MinDuration = defaults.Capture.MinDuration
	}
	if c.Capture.MaxBytes == 0 {
		c.Capture.MaxBytes = defaults.Capture.MaxBytes
	}
	if c.Capture.MinBytes == 0 {
		c.Capture.MinBytes = defaults.Capture.MinBytes
	}
	if c.Synthesis.SampleSize == 0 {
		c.Synthesis.SampleSize = defaults.Synthesis.SampleSize
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Oracle.VoiceTimeout < 0 || c.Oracle.SuggestTimeout < 0 || c.Oracle.SynthesisTimeout < 0 {
		return fmt.Errorf("oracle timeouts must be positive")
	}

	if c.Oracle.Temperature < 0 || c.Oracle.Temperature > 2 {
		return fmt.Errorf("oracle.temperature must be between 0 and 2, got %v", c.Oracle.Temperature)
	}

	if c.Capture.MinBytes < 0 || c.Capture.MaxBytes < 0 {
		return fmt.Errorf("capture byte limits cannot be negative")
	}

	if c.Capture.MinBytes >= c.Capture.MaxBytes {
		return fmt.Errorf("capture.min_bytes (%d) must be below capture.max_bytes (%d)", c.Capture.MinBytes, c.Capture.MaxBytes)
	}

	if c.Synthesis.SampleSize < 0 {
		return fmt.Errorf("synthesis.sample_size cannot be negative")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns cannot exceed database.max_open_conns")
	}

	if _, ok := styles.GetPalette(c.Theme); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", c.Theme, strings.Join(styles.ThemeNames(), ", "))
	}

	return nil
}

// DatabaseDir returns the directory holding tally.db.
func (c *Config) DatabaseDir() string {
	return c.DataDir
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "tally.log")
}
