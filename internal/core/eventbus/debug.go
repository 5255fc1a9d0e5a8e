package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger logs all bus activity at debug level, with state
// transitions and batch sizes pulled out of the payload. Dropped events log
// at warn and subscriber panics at error.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		ev := logger.Debug().Str("event", string(event))
		switch p := payload.(type) {
		case SessionStateChangedPayload:
			ev = ev.Str("session_id", p.View.ID).Str("from", string(p.From)).Str("to", string(p.To))
		case TodosCreatedPayload:
			ev = ev.Str("list_id", p.ListID).Int("count", len(p.Todos))
		case ListCreatedPayload:
			ev = ev.Str("list_id", p.List.ID)
		}
		ev.Msg("event fired")
	})

	bus.OnDrop(func(event Event, _ any) {
		logger.Warn().Str("event", string(event)).Msg("event dropped: buffer full")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}
