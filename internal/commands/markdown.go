package commands

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown renders md for the terminal. The raw text is returned when
// rendering fails.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
