// Package snapshot builds the immutable, point-in-time view of a user's lists
// and todos that grounds the intent oracle.
package snapshot

import (
	"sort"

	"github.com/colonyops/tally/internal/core/list"
)

// Snapshot is a read-only copy of lists and todos keyed by id. It holds no
// references into the store; callers must not mutate the maps.
type Snapshot struct {
	Lists map[string]list.List
	Todos map[string]list.Todo
}

// Build copies lists and todos into a new Snapshot. Later entries with a
// duplicate id replace earlier ones. Todos whose list is unknown are kept
// here and only dropped at serialization.
func Build(lists []list.List, todos []list.Todo) *Snapshot {
	s := &Snapshot{
		Lists: make(map[string]list.List, len(lists)),
		Todos: make(map[string]list.Todo, len(todos)),
	}
	for _, l := range lists {
		s.Lists[l.ID] = l
	}
	for _, t := range todos {
		s.Todos[t.ID] = copyTodo(t)
	}
	return s
}

func copyTodo(t list.Todo) list.Todo {
	if t.Number != nil {
		v := *t.Number
		t.Number = &v
	}
	if t.Amount != nil {
		v := *t.Amount
		t.Amount = &v
	}
	if t.Rating != nil {
		v := *t.Rating
		t.Rating = &v
	}
	return t
}

// IsEmpty reports whether the snapshot has no lists.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.Lists) == 0
}

// List returns the list with the given id.
func (s *Snapshot) List(id string) (list.List, bool) {
	if s == nil || id == "" {
		return list.List{}, false
	}
	l, ok := s.Lists[id]
	return l, ok
}

// Todo returns the todo with the given id.
func (s *Snapshot) Todo(id string) (list.Todo, bool) {
	if s == nil || id == "" {
		return list.Todo{}, false
	}
	t, ok := s.Todos[id]
	return t, ok
}

// ListByName finds a list by case-insensitive name.
func (s *Snapshot) ListByName(name string) (list.List, bool) {
	if s == nil {
		return list.List{}, false
	}
	for _, id := range s.listIDs() {
		if l := s.Lists[id]; l.MatchesName(name) {
			return l, true
		}
	}
	return list.List{}, false
}

// TodosFor returns the todos of a list, newest first with id as tiebreaker.
func (s *Snapshot) TodosFor(listID string) []list.Todo {
	if s == nil {
		return nil
	}
	var out []list.Todo
	for _, t := range s.Todos {
		if t.ListID == listID {
			out = append(out, copyTodo(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Sample returns up to n of the newest todos of a list.
func (s *Snapshot) Sample(listID string, n int) []list.Todo {
	todos := s.TodosFor(listID)
	if n >= 0 && len(todos) > n {
		todos = todos[:n]
	}
	return todos
}

func (s *Snapshot) listIDs() []string {
	ids := make([]string, 0, len(s.Lists))
	for id := range s.Lists {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
