package sessionguard

import "github.com/dmitrymomot/interviewkit/pkg/statemachine"

// State is the verification state of a single mounted guard.
type State string

const (
	// StateInitializing means no verification attempt has completed yet.
	StateInitializing State = "initializing"
	// StateVerified means the oracle reported a live session.
	StateVerified State = "verified"
	// StateAbsent means there is no session, the check failed or the user signed out.
	// It is terminal for the lifetime of the guard.
	StateAbsent State = "absent"
)

func (s State) Name() string { return string(s) }

func (s State) String() string { return string(s) }

// Gate is what a protected view does with its content for a given state.
type Gate int

const (
	// GateLoading renders a placeholder and never redirects.
	GateLoading Gate = iota
	// GateOpen renders the protected content.
	GateOpen
	// GateClosed suppresses the content; a redirect has been issued.
	GateClosed
)

func (g Gate) String() string {
	switch g {
	case GateOpen:
		return "open"
	case GateClosed:
		return "closed"
	default:
		return "loading"
	}
}

// GateOf derives the gate for a state.
func GateOf(s State) Gate {
	switch s {
	case StateVerified:
		return GateOpen
	case StateAbsent:
		return GateClosed
	default:
		return GateLoading
	}
}

// events driving the guard machine
var (
	eventFound     = statemachine.StringEvent("session_found")
	eventMissing   = statemachine.StringEvent("session_missing")
	eventSignedOut = statemachine.StringEvent("signed_out")
)
