package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/tally/pkg/tmpl"
)

// IntentPromptData defines available fields for the intent instruction template.
type IntentPromptData struct {
	Today           string   // Current date, YYYY-MM-DD
	Now             string   // Current time, HH:MM
	Actions         []string // Action types the oracle may return
	Routes          []string // Extra navigate targets
	PrimaryListID   string   // List on the user's desk, may be empty
	SecondaryListID string   // Linked list on the desk, may be empty
}

// SynthesisPromptData defines available fields for the synthesis instruction template.
type SynthesisPromptData struct {
	Today    string
	ListName string
	Purpose  string
	Type     string
	Template string
	Phrases  []string
	Samples  []string // Existing todos rendered one per line
}

// SuggestPromptData defines available fields for the list suggestion template.
type SuggestPromptData struct {
	Templates []string
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// prompt template syntax and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validatePrompts(),
		c.validateRoutes(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Oracle.APIKey == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Oracle",
			Item:     "api_key",
			Message:  "no API key configured; voice and suggestion commands will fail until GEMINI_API_KEY is set",
		})
	}

	if c.Oracle.VoiceTimeout > time.Minute {
		warnings = append(warnings, ValidationWarning{
			Category: "Oracle",
			Item:     "voice_timeout",
			Message:  fmt.Sprintf("voice_timeout of %s keeps users waiting a long time", c.Oracle.VoiceTimeout),
		})
	}

	if c.Synthesis.SampleSize > 20 {
		warnings = append(warnings, ValidationWarning{
			Category: "Synthesis",
			Item:     "sample_size",
			Message:  "large sample sizes increase token usage without improving style matching",
		})
	}

	return warnings
}

// validateFileAccess checks config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// validatePrompts renders each prompt override with placeholder data. With
// missingkey=error, references to unknown fields fail here instead of at
// request time.
func (c *Config) validatePrompts() error {
	var errs criterio.FieldErrorsBuilder

	checks := []struct {
		field string
		text  string
		data  any
	}{
		{"prompts.intent", c.Prompts.Intent, IntentPromptData{Today: "2025-01-01", Now: "09:00", Actions: []string{"navigate"}}},
		{"prompts.synthesis", c.Prompts.Synthesis, SynthesisPromptData{ListName: "test", Phrases: []string{"milk"}}},
		{"prompts.suggest", c.Prompts.Suggest, SuggestPromptData{Templates: []string{"shopping"}}},
	}

	for _, check := range checks {
		if check.text == "" {
			continue
		}
		if _, err := tmpl.Render(check.text, check.data); err != nil {
			errs = errs.Append(check.field, fmt.Errorf("template error: %w", err))
		}
	}

	return errs.ToError()
}

// validateRoutes checks that extra navigate targets are absolute routes.
func (c *Config) validateRoutes() error {
	var errs criterio.FieldErrorsBuilder
	seen := make(map[string]bool, len(c.Routes))

	for i, route := range c.Routes {
		field := fmt.Sprintf("routes[%d]", i)
		switch {
		case !strings.HasPrefix(route, "/"):
			errs = errs.Append(field, fmt.Errorf("route %q must start with /", route))
		case seen[route]:
			errs = errs.Append(field, fmt.Errorf("duplicate route %q", route))
		}
		seen[route] = true
	}

	return errs.ToError()
}
