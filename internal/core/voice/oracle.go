package voice

import (
	"context"
	"time"

	"github.com/colonyops/tally/internal/core/list"
)

// IntentRequest is everything the intent oracle is grounded on.
type IntentRequest struct {
	Audio    []byte
	MIMEType string
	// Context is the serialized snapshot.
	Context string
	Desk    Desk
	Now     time.Time
}

// Oracle resolves an utterance into a structured response. Implementations
// enforce their own timeout and report failures as *Error with KindTimeout,
// KindMalformedResponse, KindServiceError or KindCancelled. Responses are not
// assumed deterministic.
type Oracle interface {
	ResolveIntent(ctx context.Context, req IntentRequest) (RawResponse, error)
}

// SynthesisRequest asks for fully typed todos for a list.
type SynthesisRequest struct {
	Phrases []string
	List    list.Descriptor
	// Samples are existing todos for style matching. They must never come
	// back as new records.
	Samples []list.Todo
	Now     time.Time
}

// SynthesizedTodo is one record produced by the synthesis oracle.
type SynthesizedTodo struct {
	Text     string   `json:"text" validate:"required,nonblank,max=500"`
	Done     bool     `json:"done"`
	Notes    string   `json:"notes,omitempty" validate:"max=2000"`
	Category string   `json:"category,omitempty" validate:"max=100"`
	Date     string   `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Time     string   `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	URL      string   `json:"url,omitempty" validate:"omitempty,url"`
	Email    string   `json:"email,omitempty" validate:"omitempty,email"`
	Address  string   `json:"address,omitempty" validate:"max=500"`
	Number   *float64 `json:"number,omitempty"`
	Amount   *float64 `json:"amount,omitempty"`
	Rating   *int     `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
}

// Synthesizer expands short phrases into typed todo records.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) ([]SynthesizedTodo, error)
}
