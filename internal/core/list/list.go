// Package list defines the list and todo domain model.
package list

import (
	"strings"
	"time"
)

// List is a named collection of todos. Template names a catalog entry that
// shaped the list when it was created; the catalog itself lives elsewhere.
type List struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Purpose          string    `json:"purpose,omitempty"`
	Type             string    `json:"type,omitempty"`
	BackgroundColour string    `json:"background_colour,omitempty"`
	Icon             string    `json:"icon,omitempty"`
	Template         string    `json:"template,omitempty"`
	Description      string    `json:"description,omitempty"` // long free text, never sent to the oracle
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Todo is a single item belonging to a list.
type Todo struct {
	ID        string    `json:"id"`
	ListID    string    `json:"list"`
	Text      string    `json:"text"`
	Notes     string    `json:"notes,omitempty"`
	Done      bool      `json:"done"`
	Category  string    `json:"category,omitempty"`
	Date      string    `json:"date,omitempty"` // YYYY-MM-DD
	Time      string    `json:"time,omitempty"` // HH:MM
	URL       string    `json:"url,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	Number    *float64  `json:"number,omitempty"`
	Amount    *float64  `json:"amount,omitempty"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Descriptor is the descriptive subset of a list used to style new items.
type Descriptor struct {
	ID       string
	Name     string
	Purpose  string
	Type     string
	Template string
}

// Describe returns the list's descriptor.
func (l List) Describe() Descriptor {
	return Descriptor{
		ID:       l.ID,
		Name:     l.Name,
		Purpose:  l.Purpose,
		Type:     l.Type,
		Template: l.Template,
	}
}

// MatchesName reports whether name refers to this list, ignoring case and
// surrounding whitespace.
func (l List) MatchesName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && strings.EqualFold(strings.TrimSpace(l.Name), name)
}
