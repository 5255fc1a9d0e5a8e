package snapshot

import (
	"sort"
	"strconv"
	"strings"

	"github.com/colonyops/tally/internal/core/list"
)

// EmptyRoot is the serialization of a snapshot with no lists.
const EmptyRoot = "<context/>"

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

// Escape replaces the five markup characters with their named entities.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Serialize renders the snapshot as compact markup:
//
//	<context><list id="…"><name>…</name><todo id="…"><text>…</text></todo></list></context>
//
// Empty fields are omitted and todos of unknown lists are dropped. Lists and
// todos are emitted in id order so identical snapshots serialize identically.
func (s *Snapshot) Serialize() string {
	if s.IsEmpty() {
		return EmptyRoot
	}

	byList := make(map[string][]list.Todo, len(s.Lists))
	for _, t := range s.Todos {
		if _, ok := s.Lists[t.ListID]; !ok {
			continue
		}
		byList[t.ListID] = append(byList[t.ListID], t)
	}

	var b strings.Builder
	b.WriteString("<context>")
	for _, id := range s.listIDs() {
		l := s.Lists[id]
		openTag(&b, "list", id)
		writeListFields(&b, l)

		todos := byList[id]
		sort.Slice(todos, func(i, j int) bool { return todos[i].ID < todos[j].ID })
		for _, t := range todos {
			openTag(&b, "todo", t.ID)
			writeTodoFields(&b, t)
			b.WriteString("</todo>")
		}
		b.WriteString("</list>")
	}
	b.WriteString("</context>")
	return b.String()
}

func openTag(b *strings.Builder, name, id string) {
	b.WriteByte('<')
	b.WriteString(name)
	b.WriteString(` id="`)
	b.WriteString(Escape(id))
	b.WriteString(`">`)
}

func writeListFields(b *strings.Builder, l list.List) {
	field(b, "name", l.Name)
	field(b, "purpose", l.Purpose)
	field(b, "type", l.Type)
	field(b, "backgroundColour", l.BackgroundColour)
	field(b, "icon", l.Icon)
	field(b, "template", l.Template)
}

func writeTodoFields(b *strings.Builder, t list.Todo) {
	field(b, "text", t.Text)
	field(b, "notes", t.Notes)
	field(b, "done", strconv.FormatBool(t.Done))
	field(b, "category", t.Category)
	field(b, "date", t.Date)
	field(b, "time", t.Time)
	field(b, "url", t.URL)
	field(b, "email", t.Email)
	field(b, "address", t.Address)
	if t.Number != nil {
		field(b, "number", formatFloat(*t.Number))
	}
	if t.Amount != nil {
		field(b, "amount", formatFloat(*t.Amount))
	}
	if t.Rating != nil {
		field(b, "rating", strconv.Itoa(*t.Rating))
	}
}

func field(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteByte('<')
	b.WriteString(name)
	b.WriteByte('>')
	b.WriteString(Escape(value))
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
