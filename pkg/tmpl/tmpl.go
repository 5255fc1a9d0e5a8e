// Package tmpl renders the text templates used to build oracle instructions.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"join":    strings.Join,
	"bullets": bullets,
	"default": func(def, s string) string {
		if strings.TrimSpace(s) == "" {
			return def
		}
		return s
	},
}

// bullets renders items as a "- item" list, one per line.
func bullets(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - join: Join string slice with separator (e.g., join .Names ", ")
//   - bullets: Render a string slice as a dash list
//   - default: Fall back to a default when the value is blank
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

// MustRender is Render for templates that are compiled into the binary.
func MustRender(tmpl string, data any) string {
	out, err := Render(tmpl, data)
	if err != nil {
		panic(err)
	}
	return out
}
