package sessionguard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/interviewkit/pkg/broadcast"
	"github.com/dmitrymomot/interviewkit/pkg/logger"
)

// MemoryOracle is an in-process identity provider holding one client's
// session. Changes are fanned out to every registered handler in order.
type MemoryOracle struct {
	mu      sync.RWMutex
	session *Session
	err     error
	now     func() time.Time
	log     *slog.Logger
	events  *broadcast.MemoryBroadcaster[Change]
}

// NewMemoryOracle returns a provider with no session. It honours the logger,
// subscriber buffer and clock provider options.
func NewMemoryOracle(opts ...ProviderOption) *MemoryOracle {
	o := defaultProviderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryOracle{
		now:    o.now,
		log:    o.logger.With(logger.Component("sessionguard.memory")),
		events: broadcast.NewMemoryBroadcaster[Change](o.bufferSize),
	}
}

func (o *MemoryOracle) CurrentSession(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.err != nil {
		return nil, o.err
	}
	if o.session == nil {
		return nil, nil
	}
	s := *o.session
	return &s, nil
}

// OnSessionChange delivers every later change to h from a dedicated goroutine
// until the subscription is released or ctx ends.
func (o *MemoryOracle) OnSessionChange(ctx context.Context, h ChangeHandler) (Subscription, error) {
	sub, err := o.events.Subscribe(ctx)
	if err != nil {
		if errors.Is(err, broadcast.ErrClosed) {
			return nil, ErrProviderClosed
		}
		return nil, err
	}

	go deliver(ctx, sub, h, o.log)

	return SubscriptionFunc(sub.Close), nil
}

// SignIn starts a session for userID lasting ttl (zero never expires).
func (o *MemoryOracle) SignIn(userID uuid.UUID, ttl time.Duration) *Session {
	s := &Session{UserID: userID}
	if ttl > 0 {
		s.ExpiresAt = o.now().Add(ttl)
	}

	o.mu.Lock()
	o.session = s
	o.mu.Unlock()

	o.publish(Change{Event: EventSignedIn, Session: s})
	return s
}

// SignOut ends the session and notifies subscribers.
func (o *MemoryOracle) SignOut() {
	o.mu.Lock()
	o.session = nil
	o.mu.Unlock()

	o.publish(Change{Event: EventSignedOut})
}

// Refresh extends the current session by ttl. It is a no-op without a session.
func (o *MemoryOracle) Refresh(ttl time.Duration) {
	o.mu.Lock()
	if o.session == nil {
		o.mu.Unlock()
		return
	}
	s := *o.session
	s.ExpiresAt = o.now().Add(ttl)
	o.session = &s
	o.mu.Unlock()

	o.publish(Change{Event: EventTokenRefreshed, Session: &s})
}

// Fail makes CurrentSession return err until Fail(nil) is called.
func (o *MemoryOracle) Fail(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

// Subscribers returns the number of registered change handlers.
func (o *MemoryOracle) Subscribers() int {
	return o.events.Len()
}

// Close ends every subscription. Later subscriptions fail with ErrProviderClosed.
func (o *MemoryOracle) Close() error {
	return o.events.Close()
}

func (o *MemoryOracle) publish(c Change) {
	_ = o.events.Broadcast(context.Background(), broadcast.Message[Change]{Data: c})
}
