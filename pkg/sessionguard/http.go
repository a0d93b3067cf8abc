package sessionguard

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
)

type guardCtxKey struct{}

// WithGuard stores g in ctx.
func WithGuard(ctx context.Context, g *Guard) context.Context {
	return context.WithValue(ctx, guardCtxKey{}, g)
}

// FromContext returns the guard placed by Middleware, or nil.
func FromContext(ctx context.Context) *Guard {
	g, _ := ctx.Value(guardCtxKey{}).(*Guard)
	return g
}

// Run mounts a guard for oracle, calls fn with it and releases the guard on
// every exit path, including panics in fn.
func Run(ctx context.Context, oracle Oracle, fn func(ctx context.Context, g *Guard) error, opts ...Option) error {
	g := New(oracle, opts...)
	defer func() { _ = g.Release() }()

	g.Mount(ctx)
	return fn(ctx, g)
}

// Middleware guards next. Each request mounts its own guard and releases it
// once next returns. Requests without a verified session are redirected:
// datastar requests receive an SSE redirect, everything else a 303.
// A nil oracle from resolve is treated as a client without a session.
func Middleware(resolve OracleResolver, opts ...Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var oracle Oracle
			if resolve != nil {
				oracle = resolve(r)
			}
			if oracle == nil {
				oracle = anonymous{}
			}

			g := New(oracle, opts...)
			defer func() { _ = g.Release() }()

			if g.Mount(r.Context()) != StateVerified {
				to := g.RedirectTo()
				select {
				case cmd, ok := <-g.Redirects():
					if ok {
						to = cmd.To
					}
				default:
				}
				_ = redirect(w, r, to)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithGuard(r.Context(), g)))
		})
	}
}

// Watch holds a datastar stream open for the lifetime of the connection and
// follows the client's session. It patches a "session" signal with the
// current state and redirects the browser on the first redirect command.
func Watch(w http.ResponseWriter, r *http.Request, oracle Oracle, opts ...Option) error {
	if oracle == nil {
		oracle = anonymous{}
	}
	g := New(oracle, opts...)
	defer func() { _ = g.Release() }()

	sse := datastar.NewSSE(w, r)
	ctx := r.Context()

	if err := patchSession(sse, g.Mount(ctx)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd, ok := <-g.Redirects():
			if !ok {
				return nil
			}
			if err := patchSession(sse, g.State()); err != nil {
				return err
			}
			return sse.Redirect(cmd.To)
		}
	}
}

// TokenFromRequest extracts the session token from a bearer Authorization
// header, falling back to the named cookie.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if scheme, token, ok := strings.Cut(auth, " "); ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

func resolverFor(lookup func(token string) Oracle, cookieName string) OracleResolver {
	return func(r *http.Request) Oracle {
		return lookup(TokenFromRequest(r, cookieName))
	}
}

// IsDatastarRequest reports whether r was issued by the datastar client.
func IsDatastarRequest(r *http.Request) bool {
	return r.Header.Get("Datastar-Request") == "true" ||
		strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

func redirect(w http.ResponseWriter, r *http.Request, to string) error {
	if IsDatastarRequest(r) {
		return datastar.NewSSE(w, r).Redirect(to)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
	return nil
}

type sessionSignal struct {
	State State  `json:"state"`
	Gate  string `json:"gate"`
}

func patchSession(sse *datastar.ServerSentEventGenerator, state State) error {
	payload, err := json.Marshal(map[string]sessionSignal{
		"session": {State: state, Gate: GateOf(state).String()},
	})
	if err != nil {
		return err
	}
	return sse.PatchSignals(payload)
}

// anonymous is the oracle of a client that presented no credentials.
type anonymous struct{}

func (anonymous) CurrentSession(context.Context) (*Session, error) { return nil, nil }

func (anonymous) OnSessionChange(context.Context, ChangeHandler) (Subscription, error) {
	return SubscriptionFunc(func() error { return nil }), nil
}
