package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus delivers published payloads to subscribers on a single
// dispatch goroutine. Publishing never blocks; events are dropped when the
// buffer is full.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with the given buffer size. Call Start to dispatch.
func New(buffer int) *EventBus {
	if buffer < 1 {
		buffer = 1
	}
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	handlers := make([]func(any), len(bus.subs[env.event]))
	copy(handlers, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

// PublishListCreated publishes a list.created event.
func (bus *EventBus) PublishListCreated(p ListCreatedPayload) {
	bus.send(EventListCreated, p)
}

// SubscribeListCreated registers fn for list.created events.
func (bus *EventBus) SubscribeListCreated(fn func(ListCreatedPayload)) {
	bus.subscribe(EventListCreated, func(p any) { fn(p.(ListCreatedPayload)) })
}

// PublishSessionStateChanged publishes a session.state-changed event.
func (bus *EventBus) PublishSessionStateChanged(p SessionStateChangedPayload) {
	bus.send(EventSessionStateChanged, p)
}

// SubscribeSessionStateChanged registers fn for session.state-changed events.
func (bus *EventBus) SubscribeSessionStateChanged(fn func(SessionStateChangedPayload)) {
	bus.subscribe(EventSessionStateChanged, func(p any) { fn(p.(SessionStateChangedPayload)) })
}

// PublishTodoCompleted publishes a todo.completed event.
func (bus *EventBus) PublishTodoCompleted(p TodoCompletedPayload) {
	bus.send(EventTodoCompleted, p)
}

// SubscribeTodoCompleted registers fn for todo.completed events.
func (bus *EventBus) SubscribeTodoCompleted(fn func(TodoCompletedPayload)) {
	bus.subscribe(EventTodoCompleted, func(p any) { fn(p.(TodoCompletedPayload)) })
}

// PublishTodosCreated publishes a todos.created event.
func (bus *EventBus) PublishTodosCreated(p TodosCreatedPayload) {
	bus.send(EventTodosCreated, p)
}

// SubscribeTodosCreated registers fn for todos.created events.
func (bus *EventBus) SubscribeTodosCreated(fn func(TodosCreatedPayload)) {
	bus.subscribe(EventTodosCreated, func(p any) { fn(p.(TodosCreatedPayload)) })
}
