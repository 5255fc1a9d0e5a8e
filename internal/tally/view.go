package tally

import (
	"slices"

	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/internal/core/voice"
)

// viewLocked copies the session state. s.mu must be held.
func (s *VoiceSession) viewLocked() voice.SessionView {
	v := voice.SessionView{
		ID:            s.id,
		State:         s.state,
		Transcription: s.transcription,
		Message:       s.message,
		StartedAt:     s.startedAt,
		UpdatedAt:     s.updatedAt,
	}

	if s.action != nil {
		a := cloneAction(*s.action)
		v.Action = &a
	}
	if s.pending != nil {
		p := *s.pending
		p.Phrases = slices.Clone(p.Phrases)
		v.Pending = &p
	}
	if s.result != nil {
		r := *s.result
		r.Created = cloneTodos(r.Created)
		if r.Destination != nil {
			d := *r.Destination
			r.Destination = &d
		}
		v.Result = &r
	}
	if s.failure != nil {
		f := *s.failure
		v.Failure = &f
	}

	return v
}

func cloneAction(a voice.Action) voice.Action {
	a.Data.Texts = slices.Clone(a.Data.Texts)
	if a.Data.Done != nil {
		done := *a.Data.Done
		a.Data.Done = &done
	}
	if a.Destination != nil {
		d := *a.Destination
		a.Destination = &d
	}
	return a
}

func cloneTodos(todos []list.Todo) []list.Todo {
	if todos == nil {
		return nil
	}
	out := make([]list.Todo, len(todos))
	for i, t := range todos {
		if t.Number != nil {
			n := *t.Number
			t.Number = &n
		}
		if t.Amount != nil {
			n := *t.Amount
			t.Amount = &n
		}
		if t.Rating != nil {
			n := *t.Rating
			t.Rating = &n
		}
		out[i] = t
	}
	return out
}
