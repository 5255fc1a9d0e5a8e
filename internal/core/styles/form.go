package styles

import "github.com/charmbracelet/huh"

// FormTheme returns a huh theme coloured from the active palette.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()
	p := CurrentPalette

	t.Focused.Title = t.Focused.Title.Foreground(p.Primary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(p.Muted)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(p.Primary).Foreground(p.Foreground)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(p.Error)
	t.Blurred.Title = t.Blurred.Title.Foreground(p.Muted)

	return t
}
