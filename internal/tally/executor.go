package tally

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/tally/internal/core/eventbus"
	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/internal/core/logging"
	"github.com/colonyops/tally/internal/core/snapshot"
	"github.com/colonyops/tally/internal/core/voice"
)

// Executor performs validated actions. Only create_todo mutates the store.
type Executor struct {
	todos      list.TodoStore
	synth      *TodoSynthesizer
	bus        *eventbus.EventBus
	metrics    *Metrics
	sampleSize int
	log        zerolog.Logger
}

// NewExecutor creates an Executor. sampleSize bounds the existing todos sent
// to the synthesizer for style matching.
func NewExecutor(todos list.TodoStore, synth *TodoSynthesizer, bus *eventbus.EventBus, metrics *Metrics, sampleSize int) *Executor {
	return &Executor{
		todos:      todos,
		synth:      synth,
		bus:        bus,
		metrics:    metrics,
		sampleSize: sampleSize,
		log:        logging.Component("executor"),
	}
}

// Execute runs action against the snapshot it was validated with. A nil
// action completes with a zero count. Errors are *voice.Error.
func (e *Executor) Execute(ctx context.Context, action *voice.Action, snap *snapshot.Snapshot) (voice.ExecutionResult, error) {
	if action == nil {
		return voice.ExecutionResult{}, nil
	}

	switch action.Type {
	case voice.ActionNavigate, voice.ActionShowList, voice.ActionShowTodo:
		if action.Destination == nil {
			return voice.ExecutionResult{}, voice.Errorf(voice.KindUnresolvedTarget, "%s has no destination", action.Type)
		}
		dest := *action.Destination
		return voice.ExecutionResult{Action: action.Type, Destination: &dest}, nil
	case voice.ActionCreateTodo:
		return e.create(ctx, action, snap)
	case voice.ActionUpdateTodo, voice.ActionDeleteTodo, voice.ActionCreateList:
		return voice.ExecutionResult{}, voice.Errorf(voice.KindNotImplemented, "%s is not implemented", action.Type)
	default:
		return voice.ExecutionResult{}, voice.Errorf(voice.KindUnsupportedActionType, "unsupported action type %q", action.Type)
	}
}

func (e *Executor) create(ctx context.Context, action *voice.Action, snap *snapshot.Snapshot) (voice.ExecutionResult, error) {
	target, ok := snap.List(action.Target)
	if !ok {
		return voice.ExecutionResult{}, voice.Errorf(voice.KindUnresolvedTarget, "list %q is not in the snapshot", action.Target)
	}
	if len(action.Data.Texts) == 0 {
		return voice.ExecutionResult{}, voice.Errorf(voice.KindEmptyCreateRequest, "no phrases to create")
	}

	todos, err := e.synth.Synthesize(ctx, action.Data.Texts, target.Describe(), snap.Sample(target.ID, e.sampleSize))
	if err != nil {
		return voice.ExecutionResult{}, err
	}

	// The session may have been cancelled while synthesis ran.
	if err := ctx.Err(); err != nil {
		return voice.ExecutionResult{}, voice.NewError(voice.KindCancelled, err)
	}

	if err := e.todos.CreateBatch(ctx, todos); err != nil {
		if errors.Is(err, context.Canceled) {
			return voice.ExecutionResult{}, voice.NewError(voice.KindCancelled, err)
		}
		if errors.Is(err, list.ErrListMissing) {
			return voice.ExecutionResult{}, voice.NewError(voice.KindUnresolvedTarget, err)
		}
		return voice.ExecutionResult{}, voice.NewError(voice.KindStorage, fmt.Errorf("write todos: %w", err))
	}

	e.metrics.TodosCreated(len(todos))
	e.log.Info().Ctx(ctx).Str("list_id", target.ID).Int("count", len(todos)).Msg("todos created")

	if e.bus != nil {
		e.bus.PublishTodosCreated(eventbus.TodosCreatedPayload{
			ListID:    target.ID,
			SessionID: logging.GetSessionID(ctx),
			Todos:     cloneTodos(todos),
		})
	}

	return voice.ExecutionResult{
		Action:  voice.ActionCreateTodo,
		Count:   len(todos),
		Created: todos,
	}, nil
}
