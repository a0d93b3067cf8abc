package sessionguard

import (
	"context"
	"crypto/rand"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/interviewkit/pkg/broadcast"
	"github.com/dmitrymomot/interviewkit/pkg/logger"
	"github.com/dmitrymomot/interviewkit/pkg/pg"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the goose migrations creating the auth_sessions table
// and its change trigger. Pass it to pg.Migrate with dir ".".
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// NotifyChannel is the channel the auth_sessions trigger notifies on. It is
// fixed by the migration, so the provider always listens on it.
const NotifyChannel = "auth_session_events"

const (
	selectSessionQuery = `SELECT user_id, expires_at FROM auth_sessions
		WHERE token = $1 AND revoked_at IS NULL AND expires_at > now()`
	insertSessionQuery = `INSERT INTO auth_sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`
	revokeSessionQuery = `UPDATE auth_sessions SET revoked_at = now() WHERE token = $1 AND revoked_at IS NULL`
	liveTokensQuery    = `SELECT token FROM auth_sessions
		WHERE token = ANY($1) AND revoked_at IS NULL AND expires_at > now()`
)

// PostgresProvider keeps sessions in the auth_sessions table. A trigger
// turns every insert, revocation, refresh and delete into a NOTIFY on one
// channel; a single listener connection fans those out per token.
type PostgresProvider struct {
	pool           *pgxpool.Pool
	channel        string
	bufferSize     int
	reconnectDelay time.Duration
	log            *slog.Logger
	now            func() time.Time
	events         *broadcast.MemoryBroadcaster[Change]

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	watched map[string]int
}

// NewPostgresProvider creates a provider on top of pool. Call Start before
// handing out oracles that need change notifications.
func NewPostgresProvider(pool *pgxpool.Pool, opts ...ProviderOption) *PostgresProvider {
	o := defaultProviderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &PostgresProvider{
		pool:           pool,
		channel:        NotifyChannel,
		bufferSize:     o.bufferSize,
		reconnectDelay: o.reconnectDelay,
		log:            o.logger.With(logger.Component("sessionguard.postgres")),
		now:            o.now,
		events:         broadcast.NewMemoryBroadcaster[Change](o.bufferSize),
		watched:        make(map[string]int),
	}
}

// Start opens the listener connection and begins dispatching notifications.
// The first LISTEN runs synchronously so connection errors surface here.
func (p *PostgresProvider) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}

	conn, err := p.listen(ctx)
	if err != nil {
		return errors.Join(ErrOracleUnavailable, err)
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.started = true
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx, conn)
	return nil
}

// Close stops the listener and ends every subscription.
func (p *PostgresProvider) Close() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return p.events.Close()
}

// For returns the oracle of the client holding token.
func (p *PostgresProvider) For(token string) Oracle {
	if token == "" {
		return anonymous{}
	}
	return &postgresOracle{provider: p, token: token}
}

// Resolver returns an OracleResolver reading the token with TokenFromRequest.
func (p *PostgresProvider) Resolver(cookieName string) OracleResolver {
	return resolverFor(p.For, cookieName)
}

// SignIn inserts a new session for userID.
func (p *PostgresProvider) SignIn(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, *Session, error) {
	if ttl <= 0 {
		return "", nil, ErrInvalidTTL
	}

	token := rand.Text()
	s := &Session{UserID: userID, ExpiresAt: p.now().Add(ttl).UTC()}
	if _, err := p.pool.Exec(ctx, insertSessionQuery, token, s.UserID, s.ExpiresAt); err != nil {
		return "", nil, errors.Join(ErrOracleUnavailable, err)
	}
	return token, s, nil
}

// SignOut revokes the session behind token.
func (p *PostgresProvider) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if _, err := p.pool.Exec(ctx, revokeSessionQuery, token); err != nil {
		return errors.Join(ErrOracleUnavailable, err)
	}
	return nil
}

func (p *PostgresProvider) listen(ctx context.Context) (*pgx.Conn, error) {
	pooled, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	conn := pooled.Hijack()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{p.channel}.Sanitize()); err != nil {
		_ = conn.Close(context.Background())
		return nil, err
	}
	return conn, nil
}

func (p *PostgresProvider) run(ctx context.Context, conn *pgx.Conn) {
	defer close(p.done)

	for {
		err := p.dispatch(ctx, conn)
		_ = conn.Close(context.Background())
		if ctx.Err() != nil {
			return
		}
		p.log.WarnContext(ctx, "session listener disconnected, reconnecting",
			slog.Int("watched_tokens", len(p.watchedTokens())),
			logger.Error(err))

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.reconnectDelay):
			}
			if conn, err = p.listen(ctx); err == nil {
				break
			}
			p.log.WarnContext(ctx, "session listener reconnect failed", logger.Error(err))
		}

		p.resync(ctx)
	}
}

// resync re-verifies every watched token after a listener gap, since
// notifications sent while disconnected are lost. Tokens whose session ended
// in the meantime receive a sign-out.
func (p *PostgresProvider) resync(ctx context.Context) {
	watched := p.watchedTokens()
	if len(watched) == 0 {
		return
	}

	rows, err := p.pool.Query(ctx, liveTokensQuery, watched)
	if err != nil {
		p.log.ErrorContext(ctx, "failed to re-verify sessions after listener gap",
			slog.Int("watched_tokens", len(watched)),
			logger.Error(err))
		return
	}
	live, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		p.log.ErrorContext(ctx, "failed to re-verify sessions after listener gap",
			slog.Int("watched_tokens", len(watched)),
			logger.Error(err))
		return
	}

	ended := missingTokens(watched, live)
	for _, token := range ended {
		_ = p.events.Broadcast(ctx, broadcast.Message[Change]{Topic: token, Data: Change{Event: EventSignedOut}})
	}
	p.log.InfoContext(ctx, "sessions re-verified after listener gap",
		slog.Int("watched_tokens", len(watched)),
		slog.Int("ended", len(ended)))
}

func (p *PostgresProvider) watch(token string) func() {
	p.mu.Lock()
	p.watched[token]++
	p.mu.Unlock()

	return sync.OnceFunc(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.watched[token]--; p.watched[token] <= 0 {
			delete(p.watched, token)
		}
	})
}

func (p *PostgresProvider) watchedTokens() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	tokens := make([]string, 0, len(p.watched))
	for token := range p.watched {
		tokens = append(tokens, token)
	}
	return tokens
}

// missingTokens returns the watched tokens absent from live.
func missingTokens(watched, live []string) []string {
	alive := make(map[string]struct{}, len(live))
	for _, t := range live {
		alive[t] = struct{}{}
	}
	var missing []string
	for _, t := range watched {
		if _, ok := alive[t]; !ok {
			missing = append(missing, t)
		}
	}
	return missing
}

func (p *PostgresProvider) dispatch(ctx context.Context, conn *pgx.Conn) error {
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}

		token, change, err := decodeNotification(n)
		if err != nil {
			p.log.WarnContext(ctx, "malformed session notification", logger.Error(err))
			continue
		}
		_ = p.events.Broadcast(ctx, broadcast.Message[Change]{Topic: token, Data: change})
	}
}

type notification struct {
	Token     string     `json:"token"`
	Event     string     `json:"event"`
	UserID    uuid.UUID  `json:"user_id"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func decodeNotification(n *pgconn.Notification) (string, Change, error) {
	var msg notification
	if err := json.Unmarshal([]byte(n.Payload), &msg); err != nil {
		return "", Change{}, err
	}
	if msg.Token == "" {
		return "", Change{}, ErrInvalidToken
	}

	change := Change{Event: ChangeEvent(msg.Event)}
	if change.Event != EventSignedOut && msg.ExpiresAt != nil {
		change.Session = &Session{UserID: msg.UserID, ExpiresAt: *msg.ExpiresAt}
	}
	return msg.Token, change, nil
}

type postgresOracle struct {
	provider *PostgresProvider
	token    string
}

func (o *postgresOracle) CurrentSession(ctx context.Context) (*Session, error) {
	var s Session
	err := o.provider.pool.QueryRow(ctx, selectSessionQuery, o.token).Scan(&s.UserID, &s.ExpiresAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, errors.Join(ErrOracleUnavailable, err)
	}
	return &s, nil
}

func (o *postgresOracle) OnSessionChange(ctx context.Context, h ChangeHandler) (Subscription, error) {
	p := o.provider
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return nil, ErrNotStarted
	}

	sub, err := p.events.Subscribe(ctx, broadcast.WithTopic(o.token), broadcast.WithBufferSize(p.bufferSize))
	if err != nil {
		if errors.Is(err, broadcast.ErrClosed) {
			return nil, ErrProviderClosed
		}
		return nil, err
	}

	unwatch := p.watch(o.token)
	go func() {
		defer unwatch()
		deliver(ctx, sub, h, p.log)
	}()

	return SubscriptionFunc(func() error {
		unwatch()
		return sub.Close()
	}), nil
}
