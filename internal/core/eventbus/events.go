// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within tally.
package eventbus

import (
	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/internal/core/voice"
)

// Event names a published event type.
type Event string

const (
	// Keep list sorted A-Z
	EventListCreated         Event = "list.created"
	EventSessionStateChanged Event = "session.state-changed"
	EventTodoCompleted       Event = "todo.completed"
	EventTodosCreated        Event = "todos.created"
)

// Events lists every event type the bus carries.
func Events() []Event {
	return []Event{
		EventListCreated,
		EventSessionStateChanged,
		EventTodoCompleted,
		EventTodosCreated,
	}
}

// ListCreatedPayload is emitted when a new list is created.
type ListCreatedPayload struct {
	List list.List
}

// SessionStateChangedPayload is emitted on every voice session transition.
// View is a copy taken after the transition.
type SessionStateChangedPayload struct {
	UserID string
	From   voice.State
	To     voice.State
	View   voice.SessionView
}

// TodoCompletedPayload is emitted when a todo is marked done or undone.
type TodoCompletedPayload struct {
	TodoID string
	Done   bool
}

// TodosCreatedPayload is emitted after a batch of todos is committed.
// SessionID is empty when the batch did not come from a voice session.
type TodosCreatedPayload struct {
	ListID    string
	SessionID string
	Todos     []list.Todo
}
