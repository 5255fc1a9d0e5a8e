package gemini

import (
	"fmt"
	"strings"

	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/pkg/tmpl"
)

const defaultIntentPrompt = `You are the voice assistant of a list and todo manager.
Today is {{ .Today }} and the time is {{ .Now }}.

The user spoke a command. Transcribe it exactly, then answer with one JSON
object: "transcription", a short spoken-style "message" for the user, and an
optional "action". Leave the action out when nothing should happen.

The action "type" must be one of:
{{ bullets .Actions }}

Rules:
- "target" is a list id or todo id taken from the <context> document, or a
  route for navigate. Never invent ids.
- show_list targets a list id. show_todo targets a todo id.
- create_todo puts every item to add in data.texts, one short phrase each.
  Use data.listName when the user names a list that has no id in context.
{{- if .PrimaryListID }}
- The user is looking at list {{ .PrimaryListID }}; use it when no list is named.
{{- end }}
{{- if .SecondaryListID }}
- List {{ .SecondaryListID }} is open beside it.
{{- end }}
{{- if .Routes }}
- navigate may also target one of these routes:
{{ bullets .Routes }}
{{- end }}
- Dates are YYYY-MM-DD and times are HH:MM, resolved relative to today.`

const defaultSynthesisPrompt = `You turn short phrases into todo records for the list "{{ .ListName }}".
Today is {{ .Today }}.
{{- if .Purpose }}
The list is for: {{ .Purpose }}
{{- end }}
{{- if .Type }}
List type: {{ .Type }}
{{- end }}
{{- if .Template }}
It was created from the "{{ .Template }}" template.
{{- end }}

Return a JSON array with exactly one record per phrase, in the same order.
Every record has done=false. Fill optional fields only when the phrase
implies them.

Phrases:
{{ bullets .Phrases }}
{{- if .Samples }}

Existing items, for style only. Never return these:
{{ bullets .Samples }}
{{- end }}`

const defaultSuggestPrompt = `Look at the photo and suggest one list a user could create from it.
Answer with a JSON object: "name", "purpose", "template" and "items", the
things visible in the photo worth tracking as todos.
{{- if .Templates }}
"template" must be one of these or empty:
{{ bullets .Templates }}
{{- end }}`

// render executes override when set and fallback otherwise.
func render(override, fallback string, data any) (string, error) {
	text := fallback
	if strings.TrimSpace(override) != "" {
		text = override
	}
	out, err := tmpl.Render(text, data)
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return out, nil
}

// formatSample renders a todo as a single descriptive line.
func formatSample(t list.Todo) string {
	parts := []string{t.Text}
	add := func(key, val string) {
		if val != "" {
			parts = append(parts, key+"="+val)
		}
	}
	add("category", t.Category)
	add("date", t.Date)
	add("time", t.Time)
	add("url", t.URL)
	add("address", t.Address)
	if t.Number != nil {
		add("number", fmt.Sprint(*t.Number))
	}
	if t.Amount != nil {
		add("amount", fmt.Sprint(*t.Amount))
	}
	if t.Rating != nil {
		add("rating", fmt.Sprint(*t.Rating))
	}
	return strings.Join(parts, " | ")
}
