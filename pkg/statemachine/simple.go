package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// SimpleStateMachine provides a thread-safe in-memory state machine implementation.
// Uses a nested map structure for O(1) transition lookups: [fromState][event][]Transition
type SimpleStateMachine struct {
	initialState State
	currentState State
	transitions  map[string]map[string][]Transition
	terminal     map[string]struct{}
	listeners    []Listener
	mu           sync.RWMutex
}

func newSimpleStateMachine(initialState State) *SimpleStateMachine {
	return &SimpleStateMachine{
		initialState: initialState,
		currentState: initialState,
		transitions:  make(map[string]map[string][]Transition),
		terminal:     make(map[string]struct{}),
	}
}

func (sm *SimpleStateMachine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

func (sm *SimpleStateMachine) addTransition(from, to State, event Event, guards []Guard, actions []Action) error {
	if from == nil || to == nil || event == nil {
		return ErrInvalidTransition
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	fromStateName := from.Name()
	eventName := event.Name()

	if _, ok := sm.transitions[fromStateName]; !ok {
		sm.transitions[fromStateName] = make(map[string][]Transition)
	}

	// Multiple transitions allowed for same from/event to support guard-based branching
	sm.transitions[fromStateName][eventName] = append(sm.transitions[fromStateName][eventName], Transition{
		From:    from,
		To:      to,
		Event:   event,
		Guards:  guards,
		Actions: actions,
	})
	return nil
}

func (sm *SimpleStateMachine) markTerminal(states ...State) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for _, s := range states {
		if s == nil {
			return ErrInvalidState
		}
		sm.terminal[s.Name()] = struct{}{}
	}
	return nil
}

// validate rejects transition tables where a terminal state leads anywhere but itself.
func (sm *SimpleStateMachine) validate() error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for from := range sm.terminal {
		for eventName, transitions := range sm.transitions[from] {
			for _, t := range transitions {
				if t.To.Name() != from {
					return NewErrTerminalTransition(from, t.To.Name(), eventName)
				}
			}
		}
	}
	return nil
}

func (sm *SimpleStateMachine) Fire(ctx context.Context, event Event, data any) error {
	if event == nil {
		return ErrInvalidEvent
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	currentStateName := sm.currentState.Name()
	eventName := event.Name()

	transitions := sm.transitions[currentStateName][eventName]
	if len(transitions) == 0 {
		return NewErrNoTransitionAvailable(currentStateName, eventName)
	}

	// First transition with passing guards wins (enables priority ordering)
	validTransition := sm.selectTransition(ctx, transitions, event, data)
	if validTransition == nil {
		return NewErrTransitionRejected(currentStateName, eventName)
	}

	// Execute actions before state change; any failure aborts transition
	for _, action := range validTransition.Actions {
		if err := action(ctx, sm.currentState, validTransition.To, event, data); err != nil {
			return fmt.Errorf("action failed: %w", err)
		}
	}

	from := sm.currentState
	sm.currentState = validTransition.To

	for _, l := range sm.listeners {
		l(ctx, from, validTransition.To, event)
	}
	return nil
}

func (sm *SimpleStateMachine) CanFire(ctx context.Context, event Event, data any) bool {
	if event == nil {
		return false
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	transitions := sm.transitions[sm.currentState.Name()][event.Name()]
	if len(transitions) == 0 {
		return false
	}
	return sm.selectTransition(ctx, transitions, event, data) != nil
}

func (sm *SimpleStateMachine) IsTerminal(state State) bool {
	if state == nil {
		return false
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	_, ok := sm.terminal[state.Name()]
	return ok
}

func (sm *SimpleStateMachine) Reset() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.currentState = sm.initialState
	return nil
}

// selectTransition must be called with sm.mu held.
func (sm *SimpleStateMachine) selectTransition(ctx context.Context, transitions []Transition, event Event, data any) *Transition {
	for i, t := range transitions {
		allGuardsPassed := true
		for _, guard := range t.Guards {
			if !guard(ctx, sm.currentState, event, data) {
				allGuardsPassed = false
				break
			}
		}
		if allGuardsPassed {
			return &transitions[i]
		}
	}
	return nil
}
