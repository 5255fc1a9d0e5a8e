// Package validate provides shared validation functions for user input.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hay-kot/criterio"
)

const maxNameLength = 100

var (
	idPattern     = regexp.MustCompile(`^(lst|tdo)_[a-z0-9]+$`)
	colourPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// ListName validates a list name is non-empty after trimming whitespace and
// not longer than 100 characters.
func ListName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("name must be at most %d characters", maxNameLength)
	}
	return nil
}

// ID validates a generated list or todo id such as lst_ab12cd34.
func ID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid id %q", id)
	}
	return nil
}

// Colour validates an optional #rgb or #rrggbb colour.
func Colour(c string) error {
	if c == "" {
		return nil
	}
	if !colourPattern.MatchString(c) {
		return fmt.Errorf("colour must be a hex value like #aabbcc, got %q", c)
	}
	return nil
}

// TodoText validates a todo text is non-empty after trimming whitespace.
func TodoText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required")
	}
	return nil
}

// ListFields validates the user-editable fields of a new list.
func ListFields(name, colour string) error {
	return criterio.ValidateStruct(
		criterio.Run("name", name, ListName),
		criterio.Run("background_colour", colour, Colour),
	)
}
