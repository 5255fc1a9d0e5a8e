package eventbus_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/colonyops/tally/internal/core/eventbus"
	"github.com/colonyops/tally/internal/core/eventbus/testbus"
	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/internal/core/voice"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	// Register with a nop logger, verifies no panic.
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.Nop())

	// Publish a few events to exercise all subscriber paths.
	tb.PublishListCreated(eventbus.ListCreatedPayload{
		List: list.List{ID: "lst_test", Name: "test"},
	})
	tb.PublishSessionStateChanged(eventbus.SessionStateChangedPayload{
		From: voice.StateIdle,
		To:   voice.StatePreparing,
	})
	tb.PublishTodosCreated(eventbus.TodosCreatedPayload{ListID: "lst_test"})

	// Wait for last event to confirm all dispatched without panic.
	tb.AssertPublished(t, eventbus.EventTodosCreated)
}
