package initcmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configHeader = `# tally configuration
# The Gemini API key is read from GEMINI_API_KEY; oracle.api_key works too
# but keeps the secret in this file.
`

// ConfigOptions are the values the wizard asks for.
type ConfigOptions struct {
	Model  string
	Theme  string
	Addr   string
	Routes []string
}

// starter mirrors the subset of the config file init writes.
type starter struct {
	Oracle struct {
		Model string `yaml:"model"`
	} `yaml:"oracle"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Theme  string   `yaml:"theme"`
	Routes []string `yaml:"routes,omitempty"`
}

// GenerateConfig renders a starter config file.
func GenerateConfig(opts ConfigOptions) ([]byte, error) {
	var s starter
	s.Oracle.Model = opts.Model
	s.Server.Addr = opts.Addr
	s.Theme = opts.Theme
	s.Routes = opts.Routes

	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteConfig writes data to path, creating parent directories.
func WriteConfig(data []byte, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
