package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/tally/internal/core/voice"
)

func TestFromView(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	view := voice.SessionView{
		ID:            "s1",
		State:         voice.StateCompleted,
		Transcription: "add milk and eggs",
		Action:        &voice.Action{Type: voice.ActionCreateTodo, Target: "L1"},
		Result:        &voice.ExecutionResult{Action: voice.ActionCreateTodo, Count: 2},
		StartedAt:     start,
		UpdatedAt:     start.Add(4 * time.Second),
	}

	e := FromView("u1", view)

	assert.Equal(t, "s1", e.ID)
	assert.Equal(t, "u1", e.UserID)
	assert.Equal(t, voice.ActionCreateTodo, e.Action)
	assert.Equal(t, "L1", e.Target)
	assert.Equal(t, 2, e.Count)
	assert.False(t, e.Failed())
	assert.Equal(t, 4*time.Second, e.Duration())
}

func TestFromView_Failure(t *testing.T) {
	e := FromView("", voice.SessionView{
		ID:      "s2",
		State:   voice.StateFailed,
		Failure: &voice.Failure{Kind: voice.KindTimeout, Message: "slow"},
	})

	assert.True(t, e.Failed())
	assert.Equal(t, voice.KindTimeout, e.ErrorKind)
	assert.Empty(t, e.Action)
	assert.Zero(t, e.Count)
}
