// Package statemachine provides a small, concurrency-safe finite state machine
// used to model lifecycle state such as session verification.
//
// The package revolves around two minimal interfaces – State and Event – that
// leave the caller free to model domain states while the machine handles:
//  1. Transition validation and lookup
//  2. Optional Guard evaluation to accept or reject transitions
//  3. Execution of side-effect Actions during transitions
//  4. Terminal states that may only transition to themselves
//  5. Listeners notified after every completed transition
//
// StringState and StringEvent cover the common case; custom types can satisfy
// the interfaces when additional data is required.
//
// # Usage
//
//	const (
//	    Pending  = statemachine.StringState("pending")
//	    Verified = statemachine.StringState("verified")
//	    Absent   = statemachine.StringState("absent")
//	    Found    = statemachine.StringEvent("found")
//	    Lost     = statemachine.StringEvent("lost")
//	)
//
//	machine := statemachine.MustNew(Pending,
//	    statemachine.WithTransition(Pending, Verified, Found),
//	    statemachine.WithTransition(Verified, Absent, Lost),
//	    statemachine.WithTransition(Absent, Absent, Lost),
//	    statemachine.WithTerminal(Absent),
//	)
//
//	_ = machine.Fire(ctx, Found, nil)
//
// # Guards, Actions and Listeners
//
// Guards veto a transition based on runtime data. Actions run after all guards
// pass and before the state changes; an action error aborts the transition.
// Listeners run after the state changed and cannot veto anything.
//
// Actions and listeners execute while the machine lock is held. They must not
// call back into the same machine.
//
// # Error Handling
//
//	if statemachine.IsNoTransitionAvailableError(err) { /* event ignored in this state */ }
//	if statemachine.IsTransitionRejectedError(err)   { /* guards said no */ }
//	if statemachine.IsTerminalTransitionError(err)   { /* broken table, from New */ }
package statemachine
