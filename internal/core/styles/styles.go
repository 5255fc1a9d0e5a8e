// Package styles provides shared lipgloss styles for CLI output.
package styles

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/tally/internal/core/voice"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	TextPrimaryStyle        lipgloss.Style
	TextPrimaryBoldStyle    lipgloss.Style
	TextForegroundBoldStyle lipgloss.Style
	TextMutedStyle          lipgloss.Style
	TextSuccessStyle        lipgloss.Style
	TextWarningStyle        lipgloss.Style
	TextErrorStyle          lipgloss.Style

	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style
	TranscriptStyle    lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	TextPrimaryStyle = lipgloss.NewStyle().Foreground(p.Primary)
	TextPrimaryBoldStyle = TextPrimaryStyle.Bold(true)
	TextForegroundBoldStyle = lipgloss.NewStyle().Foreground(p.Foreground).Bold(true)
	TextMutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	TextWarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	TextErrorStyle = lipgloss.NewStyle().Foreground(p.Error)

	CommandHeaderStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true).MarginBottom(1)
	DividerStyle = lipgloss.NewStyle().Foreground(p.Muted)
	TranscriptStyle = lipgloss.NewStyle().Foreground(p.Foreground).Italic(true)
}

// StateStyle returns the style used to print a voice session state.
func StateStyle(s voice.State) lipgloss.Style {
	switch s {
	case voice.StateCompleted:
		return TextSuccessStyle
	case voice.StateFailed:
		return TextErrorStyle
	case voice.StateConfirmingCreate, voice.StateCancelled:
		return TextWarningStyle
	default:
		return TextMutedStyle
	}
}

var hexColour = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Swatch renders a small block in a list's background colour. Invalid or
// empty colours render as a muted placeholder.
func Swatch(colour string) string {
	if !hexColour.MatchString(colour) {
		return TextMutedStyle.Render("·")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(colour)).Render("■")
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
