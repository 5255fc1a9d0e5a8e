package voice

import (
	"time"

	"github.com/colonyops/tally/internal/core/list"
)

// State is the lifecycle phase of a voice session.
type State string

const (
	StateIdle             State = "idle"
	StatePreparing        State = "preparing"
	StateRecording        State = "recording"
	StateProcessing       State = "processing"
	StateResponded        State = "responded"
	StateConfirmingCreate State = "confirming_create"
	StateExecuting        State = "executing"
	StateCompleted        State = "completed"
	StateFailed           State = "failed"
	StateCancelled        State = "cancelled"
)

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

var transitions = map[State][]State{
	StateIdle:             {StatePreparing},
	StatePreparing:        {StateRecording, StateFailed},
	StateRecording:        {StateProcessing, StateFailed},
	StateProcessing:       {StateResponded, StateFailed},
	StateResponded:        {StateConfirmingCreate, StateExecuting, StateCompleted, StateFailed},
	StateConfirmingCreate: {StateExecuting, StateResponded},
	StateExecuting:        {StateCompleted, StateFailed, StateConfirmingCreate},
}

// CanTransition reports whether from → to is a legal move. Cancellation is
// legal from every non-terminal state.
func CanTransition(from, to State) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StateCancelled {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PendingCreate is the create request awaiting explicit confirmation.
type PendingCreate struct {
	ListID   string   `json:"list_id"`
	ListName string   `json:"list_name"`
	Phrases  []string `json:"phrases"`
}

// ExecutionResult reports what an executed action did.
type ExecutionResult struct {
	Action      ActionType   `json:"action"`
	Count       int          `json:"count"`
	Created     []list.Todo  `json:"created,omitempty"`
	Destination *Destination `json:"destination,omitempty"`
}

// Failure is the user-visible side of a terminal or recoverable error.
type Failure struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// SessionView is a read-only copy of a session for consumers. It never
// aliases the session's internal state.
type SessionView struct {
	ID            string           `json:"id"`
	State         State            `json:"state"`
	Transcription string           `json:"transcription,omitempty"`
	Message       string           `json:"message,omitempty"`
	Action        *Action          `json:"action,omitempty"`
	Pending       *PendingCreate   `json:"pending_confirmation,omitempty"`
	Result        *ExecutionResult `json:"result,omitempty"`
	Failure       *Failure         `json:"failure,omitempty"`
	StartedAt     time.Time        `json:"started_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
