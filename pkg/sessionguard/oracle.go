package sessionguard

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Session is the part of an identity provider session the guard cares about.
type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Live reports whether s is a usable session at now. A zero ExpiresAt never expires.
func (s *Session) Live(now time.Time) bool {
	if s == nil {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// ChangeEvent names a provider-initiated session change.
type ChangeEvent string

const (
	EventSignedIn       ChangeEvent = "signed_in"
	EventSignedOut      ChangeEvent = "signed_out"
	EventTokenRefreshed ChangeEvent = "token_refreshed"
	EventUserUpdated    ChangeEvent = "user_updated"
)

// Change is a single notification from the oracle. Session is nil when the
// provider reports that no session exists anymore.
type Change struct {
	Event   ChangeEvent `json:"event"`
	Session *Session    `json:"session,omitempty"`
}

// ChangeHandler receives change notifications in arrival order.
type ChangeHandler func(ctx context.Context, change Change)

// Subscription is the handle returned by Oracle.OnSessionChange.
type Subscription interface {
	Unsubscribe() error
}

// SubscriptionFunc adapts a function to Subscription.
type SubscriptionFunc func() error

func (f SubscriptionFunc) Unsubscribe() error { return f() }

// Oracle is the identity provider as seen by the guard.
type Oracle interface {
	// CurrentSession returns the live session or nil, nil when there is none.
	CurrentSession(ctx context.Context) (*Session, error)
	// OnSessionChange registers h until the returned subscription is released
	// or ctx is cancelled.
	OnSessionChange(ctx context.Context, h ChangeHandler) (Subscription, error)
}

// OracleResolver returns the oracle for the client behind r.
// Returning nil means the request carries no credentials at all.
type OracleResolver func(r *http.Request) Oracle
