package statemachine

import "context"

type (
	// State is anything with a stable name. Machines compare states by name.
	State interface{ Name() string }

	// Event names a trigger. Events are compared by name as well.
	Event interface{ Name() string }
)

// StateMachine is a finite state machine safe for concurrent use.
type StateMachine interface {
	// Current returns the state the machine is in.
	Current() State
	// Fire applies the first transition for event whose guards all pass.
	// Actions run in order before the state changes; an action error leaves
	// the state untouched.
	Fire(ctx context.Context, event Event, data any) error
	// CanFire reports whether Fire would find a transition, without running actions.
	CanFire(ctx context.Context, event Event, data any) bool
	// IsTerminal reports whether state was registered with WithTerminal.
	IsTerminal(state State) bool
	// Reset returns the machine to its initial state.
	Reset() error
}

type (
	// Guard vetoes a transition when it returns false.
	Guard func(ctx context.Context, from State, event Event, data any) bool

	// Action is a side effect of a transition.
	Action func(ctx context.Context, from, to State, event Event, data any) error

	// Listener observes completed transitions. It runs with the machine locked
	// and must not call back into it.
	Listener func(ctx context.Context, from, to State, event Event)
)

// Transition is one edge of the machine.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard
	Actions []Action
}

// StringState is a State backed by its name.
type StringState string

func (s StringState) Name() string   { return string(s) }
func (s StringState) String() string { return string(s) }

// StringEvent is an Event backed by its name.
type StringEvent string

func (e StringEvent) Name() string   { return string(e) }
func (e StringEvent) String() string { return string(e) }
