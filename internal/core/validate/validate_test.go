package validate

import (
	"strings"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "Groceries", false},
		{"valid with spaces", "Weekend jobs", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"only tabs", "\t\t", true},
		{"too long", strings.Repeat("a", 101), true},
		{"exactly max", strings.Repeat("é", 100), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ListName(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "ListName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		})
	}
}

func TestID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"list id", "lst_abc123", false},
		{"todo id", "tdo_9z", false},
		{"no prefix", "abc123", true},
		{"unknown prefix", "usr_abc", true},
		{"uppercase", "lst_ABC", true},
		{"empty suffix", "lst_", true},
		{"with hyphen", "lst_abc-1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ID(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "ID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		})
	}
}

func TestColour(t *testing.T) {
	assert.NoError(t, Colour(""))
	assert.NoError(t, Colour("#abc"))
	assert.NoError(t, Colour("#A1B2C3"))
	assert.Error(t, Colour("red"))
	assert.Error(t, Colour("#abcd"))
}

func TestListFields(t *testing.T) {
	require.NoError(t, ListFields("Books", "#fff"))

	err := ListFields(" ", "blue")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
}

func TestTodoText(t *testing.T) {
	assert.NoError(t, TodoText("milk"))
	assert.Error(t, TodoText("  "))
}
