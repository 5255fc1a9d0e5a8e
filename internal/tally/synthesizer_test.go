package tally

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/internal/core/voice"
)

func TestCheckRecords(t *testing.T) {
	samples := []list.Todo{{Text: "Bread"}}

	tests := []struct {
		name    string
		records []voice.SynthesizedTodo
		phrases []string
		wantErr bool
	}{
		{
			name:    "one per phrase",
			records: []voice.SynthesizedTodo{{Text: "Milk"}, {Text: "Eggs", Rating: ptr(3)}},
			phrases: []string{"milk", "eggs"},
		},
		{
			name:    "too few",
			records: []voice.SynthesizedTodo{{Text: "Milk"}},
			phrases: []string{"milk", "eggs"},
			wantErr: true,
		},
		{
			name:    "too many",
			records: []voice.SynthesizedTodo{{Text: "Milk"}, {Text: "Bread"}},
			phrases: []string{"milk"},
			wantErr: true,
		},
		{
			name:    "echoes a sample",
			records: []voice.SynthesizedTodo{{Text: "bread"}},
			phrases: []string{"something for toast"},
			wantErr: true,
		},
		{
			name:    "sample text asked for again",
			records: []voice.SynthesizedTodo{{Text: "Bread"}},
			phrases: []string{"bread"},
		},
		{
			name:    "blank text",
			records: []voice.SynthesizedTodo{{Text: "  "}},
			phrases: []string{"milk"},
			wantErr: true,
		},
		{
			name:    "done record",
			records: []voice.SynthesizedTodo{{Text: "Milk", Done: true}},
			phrases: []string{"milk"},
			wantErr: true,
		},
		{
			name:    "bad date",
			records: []voice.SynthesizedTodo{{Text: "Dentist", Date: "next tuesday"}},
			phrases: []string{"dentist"},
			wantErr: true,
		},
		{
			name:    "bad email",
			records: []voice.SynthesizedTodo{{Text: "Mail Sam", Email: "sam at home"}},
			phrases: []string{"mail sam"},
			wantErr: true,
		},
		{
			name:    "rating out of range",
			records: []voice.SynthesizedTodo{{Text: "Film", Rating: ptr(9)}},
			phrases: []string{"film"},
			wantErr: true,
		},
		{
			name:    "typed fields",
			records: []voice.SynthesizedTodo{{Text: "Dentist", Date: "2025-03-04", Time: "09:30", URL: "https://example.com", Amount: ptr(12.5)}},
			phrases: []string{"dentist"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkRecords(tt.records, tt.phrases, samples)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTodoSynthesizer(t *testing.T) {
	desc := list.Descriptor{ID: "lst_1", Name: "Groceries"}

	t.Run("maps records to todos", func(t *testing.T) {
		synth := NewTodoSynthesizer(&fakeSynth{fn: func(context.Context, voice.SynthesisRequest) ([]voice.SynthesizedTodo, error) {
			return []voice.SynthesizedTodo{{Text: " Milk ", Category: "dairy", Amount: ptr(2.0)}}, nil
		}})

		todos, err := synth.Synthesize(context.Background(), []string{"two milk"}, desc, nil)
		require.NoError(t, err)
		require.Len(t, todos, 1)
		assert.Equal(t, "lst_1", todos[0].ListID)
		assert.Equal(t, "Milk", todos[0].Text)
		assert.Equal(t, "dairy", todos[0].Category)
		assert.False(t, todos[0].Done)
	})

	t.Run("oracle errors become synthesis failures", func(t *testing.T) {
		synth := NewTodoSynthesizer(&fakeSynth{fn: func(context.Context, voice.SynthesisRequest) ([]voice.SynthesizedTodo, error) {
			return nil, voice.Errorf(voice.KindTimeout, "slow")
		}})

		_, err := synth.Synthesize(context.Background(), []string{"milk"}, desc, nil)
		assert.ErrorIs(t, err, voice.ErrSynthesisFailure)
	})

	t.Run("cancellation passes through", func(t *testing.T) {
		synth := NewTodoSynthesizer(&fakeSynth{fn: func(context.Context, voice.SynthesisRequest) ([]voice.SynthesizedTodo, error) {
			return nil, context.Canceled
		}})

		_, err := synth.Synthesize(context.Background(), []string{"milk"}, desc, nil)
		assert.ErrorIs(t, err, voice.ErrCancelled)
		assert.False(t, errors.Is(err, voice.ErrSynthesisFailure))
	})
}
