package tally

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/colonyops/tally/internal/core/eventbus"
	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/internal/core/logging"
	"github.com/colonyops/tally/internal/core/validate"
	"github.com/colonyops/tally/internal/oracle/gemini"
)

// ErrNoSuggester is returned by Suggest when no oracle is configured.
var ErrNoSuggester = errors.New("list suggestions need an oracle (set GEMINI_API_KEY)")

// Suggester proposes a list from a photo.
type Suggester interface {
	SuggestList(ctx context.Context, image []byte, mimeType string, templates []string) (gemini.Suggestion, error)
}

// ListService wraps the list and todo stores with validation and event
// publishing for direct (non-voice) edits.
type ListService struct {
	lists     list.Store
	todos     list.TodoStore
	suggester Suggester
	templates []string
	bus       *eventbus.EventBus
	log       zerolog.Logger
}

// NewListService creates a ListService. suggester may be nil.
func NewListService(lists list.Store, todos list.TodoStore, suggester Suggester, templates []string, bus *eventbus.EventBus) *ListService {
	return &ListService{
		lists:     lists,
		todos:     todos,
		suggester: suggester,
		templates: templates,
		bus:       bus,
		log:       logging.Component("list-service"),
	}
}

// Create validates and stores a new list.
func (s *ListService) Create(ctx context.Context, l *list.List) error {
	if err := s.checkList(l); err != nil {
		return err
	}

	if err := s.lists.Create(ctx, l); err != nil {
		return fmt.Errorf("create list: %w", err)
	}

	s.log.Info().Ctx(ctx).Str("list_id", l.ID).Str("name", l.Name).Msg("list created")
	s.publishList(*l)
	return nil
}

func (s *ListService) checkList(l *list.List) error {
	l.Name = strings.TrimSpace(l.Name)
	if err := validate.ListFields(l.Name, l.BackgroundColour); err != nil {
		return err
	}
	if l.Template != "" && len(s.templates) > 0 && !slices.Contains(s.templates, l.Template) {
		return fmt.Errorf("unknown template %q", l.Template)
	}
	return nil
}

// Lists returns every list ordered by name.
func (s *ListService) Lists(ctx context.Context) ([]list.List, error) {
	return s.lists.List(ctx)
}

// Show returns a list and its todos, newest first.
func (s *ListService) Show(ctx context.Context, id string) (list.List, []list.Todo, error) {
	l, err := s.lists.Get(ctx, id)
	if err != nil {
		return list.List{}, nil, fmt.Errorf("get list %s: %w", id, err)
	}

	todos, err := s.todos.List(ctx, list.TodoFilter{ListID: id})
	if err != nil {
		return list.List{}, nil, fmt.Errorf("list todos: %w", err)
	}

	return l, todos, nil
}

// AddTodos writes todos to listID in one batch. Texts are trimmed and must
// be non-empty.
func (s *ListService) AddTodos(ctx context.Context, listID string, todos []list.Todo) ([]list.Todo, error) {
	if len(todos) == 0 {
		return nil, errors.New("no todos to add")
	}
	if _, err := s.lists.Get(ctx, listID); err != nil {
		return nil, fmt.Errorf("get list %s: %w", listID, err)
	}

	batch := make([]list.Todo, len(todos))
	for i, t := range todos {
		t.Text = strings.TrimSpace(t.Text)
		if err := validate.TodoText(t.Text); err != nil {
			return nil, fmt.Errorf("todo %d: %w", i, err)
		}
		t.ListID = listID
		t.Done = false
		batch[i] = t
	}

	if err := s.todos.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("add todos: %w", err)
	}

	if s.bus != nil {
		s.bus.PublishTodosCreated(eventbus.TodosCreatedPayload{ListID: listID, Todos: cloneTodos(batch)})
	}
	return batch, nil
}

// Todos returns todos matching filter.
func (s *ListService) Todos(ctx context.Context, filter list.TodoFilter) ([]list.Todo, error) {
	return s.todos.List(ctx, filter)
}

// SetDone marks a todo done or open again.
func (s *ListService) SetDone(ctx context.Context, id string, done bool) error {
	if err := s.todos.SetDone(ctx, id, done); err != nil {
		return fmt.Errorf("set done %s: %w", id, err)
	}

	if s.bus != nil {
		s.bus.PublishTodoCompleted(eventbus.TodoCompletedPayload{TodoID: id, Done: done})
	}
	return nil
}

// Suggest asks the oracle for a list matching the photo.
func (s *ListService) Suggest(ctx context.Context, image []byte, mimeType string) (gemini.Suggestion, error) {
	if s.suggester == nil {
		return gemini.Suggestion{}, ErrNoSuggester
	}
	return s.suggester.SuggestList(ctx, image, mimeType, s.templates)
}

// CreateFromSuggestion stores the suggested list and its items in one
// transaction. Blank items are skipped.
func (s *ListService) CreateFromSuggestion(ctx context.Context, sg gemini.Suggestion) (list.List, []list.Todo, error) {
	l := list.List{Name: sg.Name, Purpose: sg.Purpose, Template: sg.Template}
	if err := s.checkList(&l); err != nil {
		return list.List{}, nil, err
	}

	var todos []list.Todo
	for _, item := range sg.Items {
		text := strings.TrimSpace(item)
		if text == "" {
			continue
		}
		todos = append(todos, list.Todo{Text: text})
	}

	if err := s.lists.CreateWithTodos(ctx, &l, todos); err != nil {
		return list.List{}, nil, fmt.Errorf("create suggested list: %w", err)
	}

	s.log.Info().Ctx(ctx).Str("list_id", l.ID).Int("items", len(todos)).Msg("list created from suggestion")
	s.publishList(l)
	if s.bus != nil && len(todos) > 0 {
		s.bus.PublishTodosCreated(eventbus.TodosCreatedPayload{ListID: l.ID, Todos: cloneTodos(todos)})
	}
	return l, todos, nil
}

func (s *ListService) publishList(l list.List) {
	if s.bus != nil {
		s.bus.PublishListCreated(eventbus.ListCreatedPayload{List: l})
	}
}
