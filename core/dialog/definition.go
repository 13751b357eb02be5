package dialog

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveSession is returned when an event arrives and the user has
	// no frame on the stack.
	ErrNoActiveSession = errors.New("dialog: no active session")
	// ErrUnknownDialog indicates a reference to a dialog name that was never
	// registered. This is a wiring defect, not a runtime condition.
	ErrUnknownDialog = errors.New("dialog: unknown dialog")
	// ErrUnknownState indicates a reference to a state name the definition
	// does not declare. This is a wiring defect, not a runtime condition.
	ErrUnknownState = errors.New("dialog: unknown state")
	// ErrNoNextState is returned by Next when the current state is the last
	// one in the definition's declared order.
	ErrNoNextState = errors.New("dialog: no next state")
	// ErrUnknownAction is returned when a button press names an action the
	// current state does not handle, e.g. a press on a stale keyboard.
	ErrUnknownAction = errors.New("dialog: unknown action")
)

// TextHandler processes a text message arriving while its state is active.
// It may mutate scratch data through the runtime and request one transition.
// Returning a rejection (see Reject) re-renders the state without saving.
type TextHandler func(rt *Runtime, text string) error

// ButtonHandler processes a press of one of the state's declared actions.
type ButtonHandler func(rt *Runtime, payload string) error

// Getter computes the view-model for rendering a state. It must not mutate
// scratch data; it reads the frame plus whatever repositories the flow closed
// over.
type Getter func(rt *Runtime) (View, error)

// Button declares an actionable transition of a state. Action is the
// callback key the transport round-trips; the payload is instance data (an
// item id, a page direction) supplied by the getter at render time.
type Button struct {
	Action  string
	OnPress ButtonHandler
}

// State is a single named step of a dialog definition.
type State struct {
	Name    string
	OnText  TextHandler
	Buttons []Button
	Getter  Getter
}

func (s *State) button(action string) (ButtonHandler, bool) {
	for _, b := range s.Buttons {
		if b.Action == action {
			return b.OnPress, true
		}
	}
	return nil, false
}

// Definition is an immutable, named dialog flow: an ordered set of states
// shared read-only by every session. The declaration order drives Next.
type Definition struct {
	name   string
	order  []string
	states map[string]*State
}

// NewDefinition validates and builds a definition. State names must be
// unique and non-empty; button actions must be unique within their state.
// Shape errors here are programmer errors and abort startup.
func NewDefinition(name string, states ...State) (*Definition, error) {
	if name == "" {
		return nil, fmt.Errorf("dialog: definition name is required")
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("dialog %q: at least one state is required", name)
	}
	def := &Definition{
		name:   name,
		order:  make([]string, 0, len(states)),
		states: make(map[string]*State, len(states)),
	}
	for i := range states {
		st := states[i]
		if st.Name == "" {
			return nil, fmt.Errorf("dialog %q: state #%d has no name", name, i)
		}
		if _, dup := def.states[st.Name]; dup {
			return nil, fmt.Errorf("dialog %q: duplicate state %q", name, st.Name)
		}
		seen := make(map[string]struct{}, len(st.Buttons))
		for _, b := range st.Buttons {
			if b.Action == "" || b.OnPress == nil {
				return nil, fmt.Errorf("dialog %q: state %q declares an invalid button", name, st.Name)
			}
			if _, dup := seen[b.Action]; dup {
				return nil, fmt.Errorf("dialog %q: state %q declares action %q twice", name, st.Name, b.Action)
			}
			seen[b.Action] = struct{}{}
		}
		def.order = append(def.order, st.Name)
		stable := st
		def.states[st.Name] = &stable
	}
	return def, nil
}

// MustDefinition builds a definition and panics on shape errors. Flows are
// constructed at startup where a bad definition must abort loudly.
func MustDefinition(name string, states ...State) *Definition {
	def, err := NewDefinition(name, states...)
	if err != nil {
		panic(err)
	}
	return def
}

// Name returns the definition's registered name.
func (d *Definition) Name() string { return d.name }

// First returns the name of the first declared state.
func (d *Definition) First() string { return d.order[0] }

// State looks up a state by name.
func (d *Definition) State(name string) (*State, bool) {
	st, ok := d.states[name]
	return st, ok
}

// Next returns the state following name in declaration order.
func (d *Definition) Next(name string) (string, error) {
	for i, n := range d.order {
		if n != name {
			continue
		}
		if i+1 >= len(d.order) {
			return "", fmt.Errorf("%w: %s.%s is the last state", ErrNoNextState, d.name, name)
		}
		return d.order[i+1], nil
	}
	return "", fmt.Errorf("%w: %s.%s", ErrUnknownState, d.name, name)
}
