package list

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a list or todo does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a list with the same name already exists.
	ErrDuplicate = errors.New("duplicate list name")
	// ErrListMissing is returned when a todo references a list that does not exist.
	ErrListMissing = errors.New("todo references unknown list")
)

// Store defines the interface for list persistence.
type Store interface {
	// Create persists a new list. The store populates ID, CreatedAt and
	// UpdatedAt if not already set. Returns ErrDuplicate on a name clash.
	Create(ctx context.Context, l *List) error

	// CreateWithTodos persists l and todos atomically, assigning each todo
	// to l. Either both are committed or neither is.
	CreateWithTodos(ctx context.Context, l *List, todos []Todo) error

	// Get returns a single list by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (List, error)

	// List returns all lists ordered by name.
	List(ctx context.Context) ([]List, error)
}

// TodoFilter controls which todos are returned by TodoStore.List.
type TodoFilter struct {
	ListID string // empty means all lists
	Done   *bool  // nil means both
	Limit  int    // 0 means unlimited
}

// TodoStore defines the interface for todo persistence.
type TodoStore interface {
	// CreateBatch inserts all todos in one transaction. Either every todo is
	// committed or none is. IDs and timestamps are filled in place.
	CreateBatch(ctx context.Context, todos []Todo) error

	// Get returns a single todo by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (Todo, error)

	// List returns todos matching the filter, newest first.
	List(ctx context.Context, filter TodoFilter) ([]Todo, error)

	// SetDone marks a todo done or not done. Returns ErrNotFound if absent.
	SetDone(ctx context.Context, id string, done bool) error
}
