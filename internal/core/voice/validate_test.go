package voice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/internal/core/snapshot"
)

func testSnapshot() *snapshot.Snapshot {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return snapshot.Build(
		[]list.List{
			{ID: "L1", Name: "Groceries", Purpose: "weekly shop"},
			{ID: "L2", Name: "Books"},
		},
		[]list.Todo{
			{ID: "T1", ListID: "L1", Text: "bread", CreatedAt: now},
			{ID: "T9", ListID: "L9", Text: "orphan", CreatedAt: now},
		},
	)
}

func TestValidate_Totality(t *testing.T) {
	snap := testSnapshot()
	inputs := []RawAction{
		{},
		{Target: "L1"},
		{Target: "nope"},
		{Target: "L1", Data: map[string]any{"texts": []any{"milk"}}},
		{Target: "T1", Data: map[string]any{"text": 12, "number": "abc", "rating": map[string]any{}}},
		{Data: map[string]any{"texts": "eggs", "done": "maybe", "amount": []int{1}}},
	}

	for _, typ := range append(ActionTypes(), "teleport", "") {
		for _, in := range inputs {
			raw := in
			raw.Type = string(typ)

			assert.NotPanics(t, func() {
				action, err := Validate(&raw, snap, Desk{})
				if err != nil {
					assert.Nil(t, action)
					var ve *Error
					require.ErrorAs(t, err, &ve)
					assert.True(t, ve.Kind.IsAction(), "kind %s for %s", ve.Kind, typ)
					return
				}
				require.NotNil(t, action)
				assert.True(t, action.Type.IsValid())
			})
		}
	}
}

func TestValidate_NilAction(t *testing.T) {
	action, err := Validate(nil, testSnapshot(), Desk{})
	require.NoError(t, err)
	assert.Nil(t, action)
}

func TestValidate_UnsupportedType(t *testing.T) {
	_, err := Validate(&RawAction{Type: "archive_list", Target: "L1"}, testSnapshot(), Desk{})
	require.ErrorIs(t, err, ErrUnsupportedActionType)
}

func TestValidate_ShowList(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		wantErr error
	}{
		{name: "known list", target: "L1"},
		{name: "stale id", target: "L9", wantErr: ErrUnresolvedTarget},
		{name: "empty target", target: "", wantErr: ErrUnresolvedTarget},
		{name: "todo id is not a list", target: "T1", wantErr: ErrUnresolvedTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := Validate(&RawAction{Type: "show_list", Target: tt.target}, testSnapshot(), Desk{})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, &Destination{Route: "/lists/L1", ListID: "L1"}, action.Destination)
		})
	}
}

func TestValidate_ShowTodo(t *testing.T) {
	snap := testSnapshot()

	action, err := Validate(&RawAction{Type: "show_todo", Target: "T1"}, snap, Desk{})
	require.NoError(t, err)
	assert.Equal(t, &Destination{Route: "/lists/L1/todos/T1", ListID: "L1", TodoID: "T1"}, action.Destination)

	action, err = Validate(&RawAction{Type: "show_todo", Target: "L2"}, snap, Desk{})
	require.NoError(t, err)
	assert.Equal(t, "L2", action.Destination.ListID)

	_, err = Validate(&RawAction{Type: "show_todo", Target: "T9"}, snap, Desk{})
	require.ErrorIs(t, err, ErrUnresolvedTarget)
}

func TestValidate_Navigate(t *testing.T) {
	snap := testSnapshot()
	v := Validator{Routes: []string{"/reports"}}

	tests := []struct {
		name    string
		target  string
		wantErr bool
	}{
		{name: "default route", target: "/settings"},
		{name: "root", target: "/"},
		{name: "configured route", target: "/reports"},
		{name: "list route", target: "/lists/L2"},
		{name: "stale list route", target: "/lists/L9", wantErr: true},
		{name: "unknown route", target: "/billing", wantErr: true},
		{name: "empty", target: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := v.Validate(&RawAction{Type: "navigate", Target: tt.target}, snap, Desk{})
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnresolvedTarget)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.target, action.Destination.Route)
		})
	}

	_, err := Validate(&RawAction{Type: "navigate", Target: "/anywhere"}, snap, Desk{})
	require.ErrorIs(t, err, ErrUnresolvedTarget, "unknown routes fail without extra routes")

	_, err = Validate(&RawAction{Type: "navigate", Target: "/reports"}, snap, Desk{})
	require.ErrorIs(t, err, ErrUnresolvedTarget, "extra routes only apply to their validator")

	action, err := Validate(&RawAction{Type: "navigate", Target: "/lists"}, snap, Desk{})
	require.NoError(t, err)
	assert.Equal(t, "/lists", action.Destination.Route)
}

func TestMergeRoutes(t *testing.T) {
	assert.Equal(t, DefaultRoutes, MergeRoutes(nil))
	assert.Equal(t,
		[]string{"/", "/lists", "/history", "/settings", "/reports"},
		MergeRoutes([]string{"/settings", " /reports ", ""}),
	)
}

func TestValidate_CreateTodo(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		name      string
		raw       RawAction
		desk      Desk
		wantList  string
		wantTexts []string
		wantErr   error
	}{
		{
			name:      "texts with list id",
			raw:       RawAction{Type: "create_todo", Target: "L1", Data: map[string]any{"texts": []any{"milk", "eggs"}}},
			wantList:  "L1",
			wantTexts: []string{"milk", "eggs"},
		},
		{
			name:      "single text by list name",
			raw:       RawAction{Type: "create_todo", Data: map[string]any{"text": "Dune", "listName": "books"}},
			wantList:  "L2",
			wantTexts: []string{"Dune"},
		},
		{
			name:      "target spoken as a name",
			raw:       RawAction{Type: "create_todo", Target: "groceries", Data: map[string]any{"texts": "apples"}},
			wantList:  "L1",
			wantTexts: []string{"apples"},
		},
		{
			name:      "falls back to desk",
			raw:       RawAction{Type: "create_todo", Data: map[string]any{"texts": []string{"pears"}}},
			desk:      Desk{PrimaryListID: "L2"},
			wantList:  "L2",
			wantTexts: []string{"pears"},
		},
		{
			name:      "blank entries dropped and text deduplicated",
			raw:       RawAction{Type: "create_todo", Target: "L1", Data: map[string]any{"texts": []any{" ", "milk", nil}, "text": "milk"}},
			wantList:  "L1",
			wantTexts: []string{"milk"},
		},
		{
			name:    "empty request",
			raw:     RawAction{Type: "create_todo", Target: "L1", Data: map[string]any{"texts": []any{""}}},
			wantErr: ErrEmptyCreateRequest,
		},
		{
			name:    "no data",
			raw:     RawAction{Type: "create_todo", Target: "L1"},
			wantErr: ErrEmptyCreateRequest,
		},
		{
			name:    "no resolvable list",
			raw:     RawAction{Type: "create_todo", Target: "L9", Data: map[string]any{"texts": []any{"milk"}}},
			desk:    Desk{PrimaryListID: "L8"},
			wantErr: ErrUnresolvedTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := Validate(&tt.raw, snap, tt.desk)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ActionCreateTodo, action.Type)
			assert.Equal(t, tt.wantList, action.Target)
			assert.Equal(t, tt.wantTexts, action.Data.Texts)
		})
	}
}

func TestValidate_AddTodoNormalized(t *testing.T) {
	action, err := Validate(&RawAction{
		Type:   "add_todo",
		Target: "L1",
		Data:   map[string]any{"texts": []any{"milk"}},
	}, testSnapshot(), Desk{})
	require.NoError(t, err)
	assert.Equal(t, ActionCreateTodo, action.Type)
	assert.Equal(t, ActionAddTodo, action.RequestedType)
}

func TestValidate_NotImplementedTypesPassThrough(t *testing.T) {
	for _, typ := range []ActionType{ActionUpdateTodo, ActionDeleteTodo, ActionCreateList} {
		action, err := Validate(&RawAction{Type: string(typ), Target: "whatever"}, testSnapshot(), Desk{})
		require.NoError(t, err, typ)
		assert.Equal(t, typ, action.Type)
	}
}

func TestCoerceData(t *testing.T) {
	d := coerceData(map[string]any{
		"number":   "42.5",
		"amount":   "twelve",
		"rating":   4.0,
		"done":     "true",
		"category": 7,
		"notes":    "  keep cold ",
	})

	assert.InDelta(t, 42.5, d.Number, 0.0001)
	assert.Zero(t, d.Amount)
	assert.Equal(t, 4, d.Rating)
	require.NotNil(t, d.Done)
	assert.True(t, *d.Done)
	assert.Equal(t, "7", d.Category)
	assert.Equal(t, "keep cold", d.Notes)

	d = coerceData(map[string]any{"done": "perhaps"})
	assert.Nil(t, d.Done)
}
