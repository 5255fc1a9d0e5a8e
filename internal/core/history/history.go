// Package history defines the voice session audit log: one entry per
// session that reached a terminal state.
package history

import (
	"context"
	"time"

	"github.com/colonyops/tally/internal/core/voice"
)

// Entry records how a voice session ended. Audio is never stored.
type Entry struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id,omitempty"`
	Transcription string           `json:"transcription,omitempty"`
	Message       string           `json:"message,omitempty"`
	Action        voice.ActionType `json:"action,omitempty"`
	Target        string           `json:"target,omitempty"`
	Outcome       voice.State      `json:"outcome"`
	ErrorKind     voice.Kind       `json:"error_kind,omitempty"`
	Count         int              `json:"count"`
	StartedAt     time.Time        `json:"started_at"`
	FinishedAt    time.Time        `json:"finished_at"`
}

// Failed returns true if the session ended in failure.
func (e *Entry) Failed() bool {
	return e.Outcome == voice.StateFailed
}

// Duration is the wall time from recording start to the terminal state.
func (e *Entry) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}

// FromView builds an entry from a terminal session view.
func FromView(userID string, v voice.SessionView) Entry {
	e := Entry{
		ID:            v.ID,
		UserID:        userID,
		Transcription: v.Transcription,
		Message:       v.Message,
		Outcome:       v.State,
		StartedAt:     v.StartedAt,
		FinishedAt:    v.UpdatedAt,
	}
	if v.Action != nil {
		e.Action = v.Action.Type
		e.Target = v.Action.Target
	}
	if v.Failure != nil {
		e.ErrorKind = v.Failure.Kind
	}
	if v.Result != nil {
		e.Count = v.Result.Count
	}
	return e
}

// Store persists audit entries.
type Store interface {
	// Record saves an entry. Recording the same ID twice replaces it.
	Record(ctx context.Context, e Entry) error

	// List returns the newest entries first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]Entry, error)
}
