package tally

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/internal/core/logging"
	"github.com/colonyops/tally/internal/core/voice"
)

var recordValidate *validator.Validate

func init() {
	recordValidate = validator.New()
	_ = recordValidate.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// TodoSynthesizer turns confirmed phrases into storable todos through the
// synthesis oracle. Every failure it reports is KindSynthesisFailure, except
// cancellation.
type TodoSynthesizer struct {
	oracle voice.Synthesizer
	log    zerolog.Logger
}

// NewTodoSynthesizer creates a TodoSynthesizer backed by oracle.
func NewTodoSynthesizer(oracle voice.Synthesizer) *TodoSynthesizer {
	return &TodoSynthesizer{
		oracle: oracle,
		log:    logging.Component("synthesizer"),
	}
}

// Synthesize returns exactly one todo per phrase, owned by desc's list.
func (s *TodoSynthesizer) Synthesize(ctx context.Context, phrases []string, desc list.Descriptor, samples []list.Todo) ([]list.Todo, error) {
	records, err := s.oracle.Synthesize(ctx, voice.SynthesisRequest{
		Phrases: phrases,
		List:    desc,
		Samples: samples,
	})
	if err != nil {
		if errors.Is(err, voice.ErrCancelled) || errors.Is(err, context.Canceled) {
			return nil, voice.NewError(voice.KindCancelled, err)
		}
		return nil, voice.NewError(voice.KindSynthesisFailure, err)
	}

	if err := checkRecords(records, phrases, samples); err != nil {
		s.log.Warn().Err(err).Str("list_id", desc.ID).Int("phrases", len(phrases)).Int("records", len(records)).Msg("synthesis rejected")
		return nil, voice.NewError(voice.KindSynthesisFailure, err)
	}

	todos := make([]list.Todo, len(records))
	for i, r := range records {
		todos[i] = list.Todo{
			ListID:   desc.ID,
			Text:     strings.TrimSpace(r.Text),
			Notes:    r.Notes,
			Category: r.Category,
			Date:     r.Date,
			Time:     r.Time,
			URL:      r.URL,
			Email:    r.Email,
			Address:  r.Address,
			Number:   r.Number,
			Amount:   r.Amount,
			Rating:   r.Rating,
		}
	}

	return todos, nil
}

// checkRecords enforces the synthesis contract: one valid, not-done record
// per phrase and none copied from the style samples.
func checkRecords(records []voice.SynthesizedTodo, phrases []string, samples []list.Todo) error {
	if len(records) != len(phrases) {
		return fmt.Errorf("got %d records for %d phrases", len(records), len(phrases))
	}

	sampleTexts := make(map[string]bool, len(samples))
	for _, t := range samples {
		sampleTexts[foldText(t.Text)] = true
	}
	requested := make(map[string]bool, len(phrases))
	for _, p := range phrases {
		requested[foldText(p)] = true
	}

	for i, r := range records {
		if err := recordValidate.Struct(r); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if r.Done {
			return fmt.Errorf("record %d is marked done", i)
		}
		key := foldText(r.Text)
		if sampleTexts[key] && !requested[key] {
			return fmt.Errorf("record %d echoes existing todo %q", i, r.Text)
		}
	}

	return nil
}

func foldText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
