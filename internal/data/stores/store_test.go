package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tally/internal/core/history"
	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/internal/core/voice"
	"github.com/colonyops/tally/internal/data/db"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func ptr[T any](v T) *T { return &v }

func TestListStore(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		store := NewListStore(openTestDB(t))

		l := &list.List{Name: "Groceries", Purpose: "weekly shop", BackgroundColour: "#aabbcc", Description: "long text"}
		require.NoError(t, store.Create(ctx, l))
		assert.Regexp(t, `^lst_[a-z0-9]{8}$`, l.ID)
		assert.False(t, l.CreatedAt.IsZero())

		got, err := store.Get(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, "Groceries", got.Name)
		assert.Equal(t, "weekly shop", got.Purpose)
		assert.Equal(t, "long text", got.Description)
		assert.True(t, l.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("get not found", func(t *testing.T) {
		store := NewListStore(openTestDB(t))

		_, err := store.Get(ctx, "lst_missing")
		assert.ErrorIs(t, err, list.ErrNotFound)
	})

	t.Run("duplicate name ignores case", func(t *testing.T) {
		store := NewListStore(openTestDB(t))

		require.NoError(t, store.Create(ctx, &list.List{Name: "Books"}))
		err := store.Create(ctx, &list.List{Name: " books "})
		assert.ErrorIs(t, err, list.ErrDuplicate)
	})

	t.Run("create with todos", func(t *testing.T) {
		database := openTestDB(t)
		store := NewListStore(database)

		l := &list.List{Name: "Pantry"}
		todos := []list.Todo{{Text: "rice"}, {Text: "beans"}}
		require.NoError(t, store.CreateWithTodos(ctx, l, todos))
		assert.Equal(t, l.ID, todos[0].ListID)

		got, err := NewTodoStore(database).List(ctx, list.TodoFilter{ListID: l.ID})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("create with todos rolls back the list", func(t *testing.T) {
		store := NewListStore(openTestDB(t))

		l := &list.List{Name: "Pantry"}
		err := store.CreateWithTodos(ctx, l, []list.Todo{
			{ID: "tdo_same", Text: "rice"},
			{ID: "tdo_same", Text: "beans"},
		})
		require.Error(t, err)

		_, err = store.Get(ctx, l.ID)
		assert.ErrorIs(t, err, list.ErrNotFound)

		lists, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, lists)
	})

	t.Run("list ordered by name", func(t *testing.T) {
		store := NewListStore(openTestDB(t))

		for _, name := range []string{"zoo", "Apples", "movies"} {
			require.NoError(t, store.Create(ctx, &list.List{Name: name}))
		}

		lists, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, lists, 3)
		assert.Equal(t, "Apples", lists[0].Name)
		assert.Equal(t, "movies", lists[1].Name)
		assert.Equal(t, "zoo", lists[2].Name)
	})
}

func TestTodoStore(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*TodoStore, string) {
		database := openTestDB(t)
		l := &list.List{Name: "Groceries"}
		require.NoError(t, NewListStore(database).Create(ctx, l))
		return NewTodoStore(database), l.ID
	}

	t.Run("create batch and get", func(t *testing.T) {
		store, listID := setup(t)

		todos := []list.Todo{
			{ListID: listID, Text: "milk", Amount: ptr(1.5), Category: "dairy"},
			{ListID: listID, Text: "eggs", Number: ptr(12.0), Rating: ptr(4)},
		}
		require.NoError(t, store.CreateBatch(ctx, todos))
		assert.Regexp(t, `^tdo_[a-z0-9]{10}$`, todos[0].ID)

		got, err := store.Get(ctx, todos[1].ID)
		require.NoError(t, err)
		assert.Equal(t, "eggs", got.Text)
		require.NotNil(t, got.Number)
		assert.InDelta(t, 12.0, *got.Number, 0.0001)
		require.NotNil(t, got.Rating)
		assert.Equal(t, 4, *got.Rating)
		assert.Nil(t, got.Amount)

		first, err := store.Get(ctx, todos[0].ID)
		require.NoError(t, err)
		require.NotNil(t, first.Amount)
		assert.Equal(t, "dairy", first.Category)
	})

	t.Run("batch is atomic", func(t *testing.T) {
		store, listID := setup(t)

		err := store.CreateBatch(ctx, []list.Todo{
			{ListID: listID, Text: "milk"},
			{ListID: "lst_missing", Text: "eggs"},
		})
		require.ErrorIs(t, err, list.ErrListMissing)

		todos, err := store.List(ctx, list.TodoFilter{})
		require.NoError(t, err)
		assert.Empty(t, todos, "no partial batch")
	})

	t.Run("empty batch", func(t *testing.T) {
		store, _ := setup(t)
		assert.NoError(t, store.CreateBatch(ctx, nil))
	})

	t.Run("list filters", func(t *testing.T) {
		store, listID := setup(t)
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		require.NoError(t, store.CreateBatch(ctx, []list.Todo{
			{ListID: listID, Text: "old", CreatedAt: base},
			{ListID: listID, Text: "new", CreatedAt: base.Add(time.Hour)},
			{ListID: listID, Text: "done", Done: true, CreatedAt: base.Add(2 * time.Hour)},
		}))

		all, err := store.List(ctx, list.TodoFilter{ListID: listID})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "done", all[0].Text, "newest first")

		open, err := store.List(ctx, list.TodoFilter{Done: ptr(false)})
		require.NoError(t, err)
		require.Len(t, open, 2)
		assert.Equal(t, "new", open[0].Text)

		limited, err := store.List(ctx, list.TodoFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		other, err := store.List(ctx, list.TodoFilter{ListID: "lst_other"})
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("set done", func(t *testing.T) {
		store, listID := setup(t)
		todos := []list.Todo{{ListID: listID, Text: "milk"}}
		require.NoError(t, store.CreateBatch(ctx, todos))

		require.NoError(t, store.SetDone(ctx, todos[0].ID, true))
		got, err := store.Get(ctx, todos[0].ID)
		require.NoError(t, err)
		assert.True(t, got.Done)

		err = store.SetDone(ctx, "tdo_missing", true)
		assert.True(t, errors.Is(err, list.ErrNotFound))
	})
}

func TestHistoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(openTestDB(t))
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, history.Entry{
		ID:         "s1",
		Outcome:    voice.StateFailed,
		ErrorKind:  voice.KindTimeout,
		StartedAt:  base,
		FinishedAt: base.Add(30 * time.Second),
	}))
	require.NoError(t, store.Record(ctx, history.Entry{
		ID:            "s2",
		Transcription: "add milk",
		Action:        voice.ActionCreateTodo,
		Target:        "lst_1",
		Outcome:       voice.StateCompleted,
		Count:         1,
		StartedAt:     base.Add(time.Minute),
		FinishedAt:    base.Add(time.Minute + 5*time.Second),
	}))

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "s2", entries[0].ID)
	assert.Equal(t, voice.ActionCreateTodo, entries[0].Action)
	assert.Equal(t, 1, entries[0].Count)
	assert.Equal(t, voice.KindTimeout, entries[1].ErrorKind)
	assert.Equal(t, 30*time.Second, entries[1].Duration())

	entries, err = store.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
