package sessionguard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/interviewkit/pkg/logger"
	"github.com/dmitrymomot/interviewkit/pkg/statemachine"
)

// Guard tracks the session state of one mounted protected view.
//
// A guard is created per mount, mounted once and released exactly once on
// teardown. Every state change happens under the guard's lock and nothing is
// applied after Release: late check results and late notifications are
// dropped without a transition or a redirect.
type Guard struct {
	id           string
	oracle       Oracle
	log          *slog.Logger
	redirectTo   string
	checkTimeout time.Duration
	now          func() time.Time

	machine   statemachine.StateMachine
	redirects chan Redirect

	mu          sync.Mutex
	released    bool
	checked     bool
	subscribed  bool
	degraded    bool
	sub         Subscription
	cancelCheck context.CancelFunc
	stopSub     context.CancelFunc

	releaseOnce sync.Once
	releaseErr  error
}

// New creates a guard in StateInitializing. It does not contact the oracle;
// call Mount (or Subscribe followed by Check) for that.
func New(oracle Oracle, opts ...Option) *Guard {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	g := &Guard{
		id:           o.id,
		oracle:       oracle,
		log:          o.logger.With(logger.Component("sessionguard"), logger.GuardID(o.id)),
		redirectTo:   o.redirectTo,
		checkTimeout: o.checkTimeout,
		now:          o.now,
		redirects:    make(chan Redirect, o.redirectBuffer),
	}

	g.machine = statemachine.MustNew(StateInitializing,
		statemachine.WithTransition(StateInitializing, StateVerified, eventFound),
		statemachine.WithTransition(StateInitializing, StateAbsent, eventMissing, statemachine.WithAction(g.emitRedirect)),
		statemachine.WithTransition(StateInitializing, StateAbsent, eventSignedOut, statemachine.WithAction(g.emitRedirect)),
		statemachine.WithTransition(StateVerified, StateAbsent, eventSignedOut, statemachine.WithAction(g.emitRedirect)),
		statemachine.WithTransition(StateAbsent, StateAbsent, eventSignedOut, statemachine.WithAction(g.emitRedirect)),
		statemachine.WithTerminal(StateAbsent),
		statemachine.WithTransitionListener(g.logTransition),
	)

	return g
}

// ID returns the identifier attached to every log record of this guard.
func (g *Guard) ID() string { return g.id }

// State returns the current state.
func (g *Guard) State() State {
	return g.machine.Current().(State)
}

// Gate returns the gate derived from the current state.
func (g *Guard) Gate() Gate {
	return GateOf(g.State())
}

// RedirectTo returns the public entry point redirect commands point at.
func (g *Guard) RedirectTo() string { return g.redirectTo }

// Redirects delivers redirect commands. The channel is closed by Release.
func (g *Guard) Redirects() <-chan Redirect { return g.redirects }

// Degraded reports whether the guard runs without change notifications
// because the subscription could not be established.
func (g *Guard) Degraded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.degraded
}

// Released reports whether Release has been called.
func (g *Guard) Released() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.released
}

// Mount subscribes to session changes and then runs the initial check, so
// a sign-out that lands while the check is pending is never missed.
// A failed subscription leaves the guard degraded but still checks.
func (g *Guard) Mount(ctx context.Context) State {
	if err := g.Subscribe(ctx); err != nil && !errors.Is(err, ErrSubscriptionFailed) {
		g.log.DebugContext(ctx, "subscription skipped", logger.Error(err))
	}
	return g.Check(ctx)
}

// Check asks the oracle for the current session once per guard.
// A live session moves the guard to StateVerified. No session, an expired
// session, an oracle error or a timeout move it to StateAbsent and emit a
// redirect. Errors are logged, never returned, and never retried.
// Later calls return the current state without contacting the oracle.
func (g *Guard) Check(ctx context.Context) State {
	g.mu.Lock()
	if g.released || g.checked {
		g.mu.Unlock()
		return g.State()
	}
	g.checked = true

	var (
		checkCtx context.Context
		cancel   context.CancelFunc
	)
	if g.checkTimeout > 0 {
		checkCtx, cancel = context.WithTimeoutCause(ctx, g.checkTimeout, ErrCheckTimeout)
	} else {
		checkCtx, cancel = context.WithCancel(ctx)
	}
	g.cancelCheck = cancel
	g.mu.Unlock()
	defer cancel()

	started := time.Now()
	session, err := g.currentSession(checkCtx)
	if err != nil && errors.Is(context.Cause(checkCtx), ErrCheckTimeout) {
		err = errors.Join(ErrCheckTimeout, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelCheck = nil

	if g.released {
		g.log.DebugContext(ctx, "discarding session check result after release",
			logger.Duration(time.Since(started)))
		return g.State()
	}

	switch {
	case err != nil:
		g.log.ErrorContext(ctx, "session check failed",
			logger.Error(err),
			logger.Duration(time.Since(started)))
		g.fire(ctx, eventMissing, ReasonError)
	case !session.Live(g.now()):
		g.fire(ctx, eventMissing, ReasonMissing)
	default:
		g.fire(ctx, eventFound, "")
		g.log.DebugContext(ctx, "session verified", logger.UserID(session.UserID))
	}

	return g.State()
}

// Subscribe registers the guard with the oracle's change notifications.
// Any notification without a live session, or reporting a sign-out, moves the
// guard to StateAbsent and emits a redirect, whatever the current state.
//
// A registration failure is logged, marks the guard degraded and is returned
// wrapped in ErrSubscriptionFailed.
func (g *Guard) Subscribe(ctx context.Context) error {
	g.mu.Lock()
	switch {
	case g.released:
		g.mu.Unlock()
		return ErrReleased
	case g.subscribed:
		g.mu.Unlock()
		return ErrAlreadySubscribed
	}
	g.subscribed = true

	// The subscription outlives the call that created it and ends on Release.
	subCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	g.stopSub = stop
	g.mu.Unlock()

	var (
		sub Subscription
		err error
	)
	if g.oracle == nil {
		err = ErrNilOracle
	} else {
		sub, err = g.oracle.OnSessionChange(subCtx, g.handleChange)
	}

	g.mu.Lock()
	if err != nil {
		g.degraded = true
		g.stopSub = nil
		g.mu.Unlock()
		stop()
		g.log.WarnContext(ctx, "session change subscription failed, live sign-out detection disabled",
			logger.Error(err))
		return errors.Join(ErrSubscriptionFailed, err)
	}
	if g.released {
		g.mu.Unlock()
		if uerr := sub.Unsubscribe(); uerr != nil {
			g.log.WarnContext(ctx, "failed to unsubscribe after release", logger.Error(uerr))
		}
		return ErrReleased
	}
	g.sub = sub
	g.mu.Unlock()

	return nil
}

// Release tears the guard down: it cancels an in-flight check, unregisters
// the subscription and closes the redirect channel. Only the first call does
// any work; every call returns the unsubscribe error of that first call.
func (g *Guard) Release() error {
	g.releaseOnce.Do(func() {
		g.mu.Lock()
		g.released = true
		if g.cancelCheck != nil {
			g.cancelCheck()
		}
		if g.stopSub != nil {
			g.stopSub()
		}
		sub := g.sub
		g.sub = nil
		close(g.redirects)
		g.mu.Unlock()

		if sub != nil {
			if err := sub.Unsubscribe(); err != nil {
				g.releaseErr = err
				g.log.Warn("failed to unsubscribe from session changes", logger.Error(err))
			}
		}
		g.log.Debug("session guard released", logger.SessionState(g.State().Name()))
	})
	return g.releaseErr
}

func (g *Guard) handleChange(ctx context.Context, change Change) {
	if change.Event != EventSignedOut && change.Session.Live(g.now()) {
		g.log.DebugContext(ctx, "ignoring session change", logger.Event(string(change.Event)))
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.released {
		g.log.DebugContext(ctx, "discarding session change after release", logger.Event(string(change.Event)))
		return
	}
	g.fire(ctx, eventSignedOut, ReasonSignedOut)
}

func (g *Guard) currentSession(ctx context.Context) (*Session, error) {
	if g.oracle == nil {
		return nil, ErrNilOracle
	}
	return g.oracle.CurrentSession(ctx)
}

// fire must be called with g.mu held.
func (g *Guard) fire(ctx context.Context, event statemachine.StringEvent, reason Reason) {
	err := g.machine.Fire(ctx, event, reason)
	switch {
	case err == nil:
	case statemachine.IsNoTransitionAvailableError(err):
		g.log.DebugContext(ctx, "event ignored in current state",
			logger.Event(event.Name()),
			logger.SessionState(g.State().Name()))
	default:
		g.log.ErrorContext(ctx, "session guard transition failed",
			logger.Event(event.Name()),
			logger.Error(err))
	}
}

// emitRedirect runs inside Fire with g.mu held, so the channel is still open.
func (g *Guard) emitRedirect(ctx context.Context, _, _ statemachine.State, _ statemachine.Event, data any) error {
	reason, _ := data.(Reason)
	cmd := Redirect{To: g.redirectTo, Reason: reason}

	select {
	case g.redirects <- cmd:
		g.log.InfoContext(ctx, "redirect issued",
			logger.Redirect(cmd.To),
			slog.String("reason", string(reason)))
	default:
		g.log.WarnContext(ctx, "redirect dropped, command buffer full",
			logger.Redirect(cmd.To),
			slog.String("reason", string(reason)))
	}
	return nil
}

func (g *Guard) logTransition(ctx context.Context, from, to statemachine.State, event statemachine.Event) {
	g.log.DebugContext(ctx, "session state changed", logger.Transition(from.Name(), to.Name(), event.Name()))
}
