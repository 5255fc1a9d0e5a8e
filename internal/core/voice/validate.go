package voice

import (
	"slices"
	"strings"

	"github.com/spf13/cast"

	"github.com/colonyops/tally/internal/core/snapshot"
)

const listRoutePrefix = "/lists/"

// DefaultRoutes are the navigate targets every install knows besides list
// routes.
var DefaultRoutes = []string{"/", "/lists", "/history", "/settings"}

// MergeRoutes returns DefaultRoutes followed by the extra routes not already
// present.
func MergeRoutes(extra []string) []string {
	out := slices.Clone(DefaultRoutes)
	for _, r := range extra {
		if r = strings.TrimSpace(r); r != "" && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

// ListRoute returns the route that shows a list.
func ListRoute(listID string) string {
	return listRoutePrefix + listID
}

// TodoRoute returns the route that shows a todo inside its list.
func TodoRoute(listID, todoID string) string {
	return listRoutePrefix + listID + "/todos/" + todoID
}

// Validator turns raw oracle actions into typed actions.
type Validator struct {
	// Routes are navigate targets allowed on top of DefaultRoutes. List
	// routes are always allowed when the list resolves.
	Routes []string
}

// Validate checks raw with a default Validator.
func Validate(raw *RawAction, snap *snapshot.Snapshot, desk Desk) (*Action, error) {
	return Validator{}.Validate(raw, snap, desk)
}

// Validate checks raw against the grammar and resolves its target against
// snap. A nil raw action is not an error and yields a nil Action. Every
// failure is an *Error with an action kind.
func (v Validator) Validate(raw *RawAction, snap *snapshot.Snapshot, desk Desk) (*Action, error) {
	if raw == nil {
		return nil, nil
	}

	requested := ActionType(strings.TrimSpace(raw.Type))
	if !requested.IsValid() {
		return nil, Errorf(KindUnsupportedActionType, "action type %q", raw.Type)
	}

	action := &Action{
		Type:   requested,
		Target: strings.TrimSpace(raw.Target),
		Data:   coerceData(raw.Data),
	}
	if requested == ActionAddTodo {
		action.Type = ActionCreateTodo
		action.RequestedType = requested
	}

	switch action.Type {
	case ActionNavigate:
		return v.navigate(action, snap)
	case ActionShowList:
		l, ok := snap.List(action.Target)
		if !ok {
			return nil, unresolved(action)
		}
		action.Destination = &Destination{Route: ListRoute(l.ID), ListID: l.ID}
	case ActionShowTodo:
		if t, ok := snap.Todo(action.Target); ok {
			if _, ok := snap.List(t.ListID); !ok {
				return nil, Errorf(KindUnresolvedTarget, "todo %q belongs to unknown list %q", t.ID, t.ListID)
			}
			action.Destination = &Destination{Route: TodoRoute(t.ListID, t.ID), ListID: t.ListID, TodoID: t.ID}
			break
		}
		l, ok := snap.List(action.Target)
		if !ok {
			return nil, unresolved(action)
		}
		action.Destination = &Destination{Route: ListRoute(l.ID), ListID: l.ID}
	case ActionCreateTodo:
		if len(action.Data.Texts) == 0 {
			return nil, Errorf(KindEmptyCreateRequest, "no texts in %s action", requested)
		}
		listID, ok := resolveCreateTarget(action, snap, desk)
		if !ok {
			return nil, unresolved(action)
		}
		action.Target = listID
	}

	return action, nil
}

func (v Validator) navigate(action *Action, snap *snapshot.Snapshot) (*Action, error) {
	route := action.Target
	if route == "" {
		return nil, Errorf(KindUnresolvedTarget, "navigate without target")
	}

	dest := &Destination{Route: route}
	if rest, ok := strings.CutPrefix(route, listRoutePrefix); ok {
		id, _, _ := strings.Cut(rest, "/")
		if _, ok := snap.List(id); !ok {
			return nil, unresolved(action)
		}
		dest.ListID = id
	} else if !slices.Contains(DefaultRoutes, route) && !slices.Contains(v.Routes, route) {
		return nil, unresolved(action)
	}

	action.Destination = dest
	return action, nil
}

// resolveCreateTarget picks the list for a create request: explicit id, then
// data.listName, then the target spoken as a name, then the desk's primary list.
func resolveCreateTarget(action *Action, snap *snapshot.Snapshot, desk Desk) (string, bool) {
	if l, ok := snap.List(action.Target); ok {
		return l.ID, true
	}
	if l, ok := snap.ListByName(action.Data.ListName); ok {
		return l.ID, true
	}
	if l, ok := snap.ListByName(action.Target); ok {
		return l.ID, true
	}
	if l, ok := snap.List(desk.PrimaryListID); ok {
		return l.ID, true
	}
	return "", false
}

func unresolved(action *Action) *Error {
	if action.Target == "" {
		return Errorf(KindUnresolvedTarget, "%s without target", action.Type)
	}
	return Errorf(KindUnresolvedTarget, "%s target %q not in snapshot", action.Type, action.Target)
}

// coerceData reads the optional data fields. Values of the wrong type are
// coerced where possible and otherwise left at their zero value.
func coerceData(raw map[string]any) Data {
	if len(raw) == 0 {
		return Data{}
	}

	d := Data{
		Texts:    texts(raw),
		Notes:    str(raw, "notes"),
		ListName: str(raw, "listName"),
		Template: str(raw, "template"),
		Purpose:  str(raw, "purpose"),
		Category: str(raw, "category"),
		Date:     str(raw, "date"),
		Time:     str(raw, "time"),
		URL:      str(raw, "url"),
		Email:    str(raw, "email"),
		Address:  str(raw, "address"),
		Number:   num(raw, "number"),
		Amount:   num(raw, "amount"),
		Rating:   int(num(raw, "rating")),
	}
	if v, ok := raw["done"]; ok && v != nil {
		if b, err := cast.ToBoolE(v); err == nil {
			d.Done = &b
		}
	}
	return d
}

func texts(raw map[string]any) []string {
	var out []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	switch v := raw["texts"].(type) {
	case nil:
	case string:
		add(v)
	case []any:
		for _, item := range v {
			add(cast.ToString(item))
		}
	default:
		for _, item := range cast.ToStringSlice(v) {
			add(item)
		}
	}
	if single := str(raw, "text"); single != "" && !slices.Contains(out, single) {
		out = append(out, single)
	}
	return out
}

func str(raw map[string]any, key string) string {
	return strings.TrimSpace(cast.ToString(raw[key]))
}

func num(raw map[string]any, key string) float64 {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0
	}
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	return cast.ToFloat64(v)
}
