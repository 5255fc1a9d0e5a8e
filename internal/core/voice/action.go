// Package voice defines the voice-command pipeline domain: the action grammar
// the oracle answers in, the error taxonomy, session states and the
// collaborator interfaces the pipeline depends on.
package voice

// ActionType is the closed set of actions the oracle may request.
type ActionType string

const (
	ActionNavigate   ActionType = "navigate"
	ActionShowList   ActionType = "show_list"
	ActionShowTodo   ActionType = "show_todo"
	ActionCreateTodo ActionType = "create_todo"
	ActionUpdateTodo ActionType = "update_todo"
	ActionDeleteTodo ActionType = "delete_todo"
	ActionCreateList ActionType = "create_list"
	ActionAddTodo    ActionType = "add_todo"
)

// ActionTypes returns every member of the grammar in declaration order.
func ActionTypes() []ActionType {
	return []ActionType{
		ActionNavigate,
		ActionShowList,
		ActionShowTodo,
		ActionCreateTodo,
		ActionUpdateTodo,
		ActionDeleteTodo,
		ActionCreateList,
		ActionAddTodo,
	}
}

// IsValid reports whether t is part of the grammar.
func (t ActionType) IsValid() bool {
	switch t {
	case ActionNavigate, ActionShowList, ActionShowTodo,
		ActionCreateTodo, ActionUpdateTodo, ActionDeleteTodo,
		ActionCreateList, ActionAddTodo:
		return true
	default:
		return false
	}
}

// IsNavigation reports whether t only moves the user somewhere.
func (t ActionType) IsNavigation() bool {
	return t == ActionNavigate || t == ActionShowList || t == ActionShowTodo
}

// RawAction is the action object exactly as the oracle returned it.
type RawAction struct {
	Type   string         `json:"type"`
	Target string         `json:"target"`
	Data   map[string]any `json:"data,omitempty"`
}

// RawResponse is the oracle's structured answer to an utterance.
type RawResponse struct {
	Transcription string     `json:"transcription"`
	Message       string     `json:"message"`
	Action        *RawAction `json:"action,omitempty"`
}

// Action is a validated, typed instruction resolved against a snapshot.
type Action struct {
	Type ActionType `json:"type"`
	// RequestedType is the type the oracle sent when it was normalized,
	// e.g. add_todo arriving as create_todo.
	RequestedType ActionType `json:"requested_type,omitempty"`
	Target        string     `json:"target,omitempty"`
	Data          Data       `json:"data"`
	// Destination is set for navigation types once the target resolved.
	Destination *Destination `json:"destination,omitempty"`
}

// Data holds the optional, independently coerced fields of an action.
type Data struct {
	Texts    []string `json:"texts,omitempty"`
	Notes    string   `json:"notes,omitempty"`
	ListName string   `json:"list_name,omitempty"`
	Template string   `json:"template,omitempty"`
	Purpose  string   `json:"purpose,omitempty"`
	Category string   `json:"category,omitempty"`
	Date     string   `json:"date,omitempty"`
	Time     string   `json:"time,omitempty"`
	URL      string   `json:"url,omitempty"`
	Email    string   `json:"email,omitempty"`
	Address  string   `json:"address,omitempty"`
	Number   float64  `json:"number,omitempty"`
	Amount   float64  `json:"amount,omitempty"`
	Rating   int      `json:"rating,omitempty"`
	Done     *bool    `json:"done,omitempty"`
}

// Destination is where a navigation action sends the UI.
type Destination struct {
	Route  string `json:"route"`
	ListID string `json:"list_id,omitempty"`
	TodoID string `json:"todo_id,omitempty"`
}

// Desk is the session-scoped list selection: the list the user is looking
// at and the one linked beside it, if any.
type Desk struct {
	PrimaryListID   string `json:"primary_list_id,omitempty"`
	SecondaryListID string `json:"secondary_list_id,omitempty"`
}
