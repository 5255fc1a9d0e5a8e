package tally

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/internal/core/snapshot"
)

// SnapshotLoader reads the current lists and todos into a snapshot.
type SnapshotLoader struct {
	lists list.Store
	todos list.TodoStore
}

// NewSnapshotLoader creates a SnapshotLoader.
func NewSnapshotLoader(lists list.Store, todos list.TodoStore) *SnapshotLoader {
	return &SnapshotLoader{lists: lists, todos: todos}
}

// Load fetches lists and todos concurrently and builds a snapshot from them.
func (l *SnapshotLoader) Load(ctx context.Context) (*snapshot.Snapshot, error) {
	var (
		lists []list.List
		todos []list.Todo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lists, err = l.lists.List(gctx)
		if err != nil {
			return fmt.Errorf("load lists: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		todos, err = l.todos.List(gctx, list.TodoFilter{})
		if err != nil {
			return fmt.Errorf("load todos: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return snapshot.Build(lists, todos), nil
}
