package sessionguard

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/interviewkit/pkg/logger"
)

// RedisProvider keeps sessions in Redis and publishes their changes.
//
// A session lives at "<prefix>session:<token>" as JSON with the session
// lifetime as TTL. Changes for a token are published as JSON on
// "<prefix>events:<token>".
type RedisProvider struct {
	client redis.UniversalClient
	prefix string
	log    *slog.Logger
	now    func() time.Time
}

// NewRedisProvider creates a provider on top of client.
func NewRedisProvider(client redis.UniversalClient, opts ...ProviderOption) *RedisProvider {
	o := defaultProviderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisProvider{
		client: client,
		prefix: o.prefix,
		log:    o.logger.With(logger.Component("sessionguard.redis")),
		now:    o.now,
	}
}

// For returns the oracle of the client holding token.
// An empty token yields an oracle that never has a session.
func (p *RedisProvider) For(token string) Oracle {
	if token == "" {
		return anonymous{}
	}
	return &redisOracle{provider: p, token: token}
}

// Resolver returns an OracleResolver reading the token with TokenFromRequest.
func (p *RedisProvider) Resolver(cookieName string) OracleResolver {
	return resolverFor(p.For, cookieName)
}

// SignIn stores a new session for userID and announces it.
func (p *RedisProvider) SignIn(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, *Session, error) {
	if ttl <= 0 {
		return "", nil, ErrInvalidTTL
	}

	token := rand.Text()
	s := &Session{UserID: userID, ExpiresAt: p.now().Add(ttl).UTC()}

	data, err := json.Marshal(s)
	if err != nil {
		return "", nil, err
	}
	if err := p.client.Set(ctx, p.sessionKey(token), data, ttl).Err(); err != nil {
		return "", nil, errors.Join(ErrOracleUnavailable, err)
	}

	p.publish(ctx, token, Change{Event: EventSignedIn, Session: s})
	return token, s, nil
}

// SignOut deletes the session behind token and announces it.
// Signing out an unknown token still publishes the change.
func (p *RedisProvider) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if err := p.client.Del(ctx, p.sessionKey(token)).Err(); err != nil {
		return errors.Join(ErrOracleUnavailable, err)
	}
	p.publish(ctx, token, Change{Event: EventSignedOut})
	return nil
}

func (p *RedisProvider) sessionKey(token string) string {
	return p.prefix + "session:" + token
}

func (p *RedisProvider) channel(token string) string {
	return p.prefix + "events:" + token
}

func (p *RedisProvider) publish(ctx context.Context, token string, c Change) {
	data, err := json.Marshal(c)
	if err == nil {
		err = p.client.Publish(ctx, p.channel(token), data).Err()
	}
	if err != nil {
		p.log.WarnContext(ctx, "failed to publish session change",
			logger.Event(string(c.Event)),
			logger.Error(err))
	}
}

type redisOracle struct {
	provider *RedisProvider
	token    string
}

func (o *redisOracle) CurrentSession(ctx context.Context) (*Session, error) {
	data, err := o.provider.client.Get(ctx, o.provider.sessionKey(o.token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Join(ErrOracleUnavailable, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Join(ErrOracleUnavailable, err)
	}
	return &s, nil
}

// OnSessionChange returns once Redis has confirmed the subscription.
func (o *redisOracle) OnSessionChange(ctx context.Context, h ChangeHandler) (Subscription, error) {
	ps := o.provider.client.Subscribe(ctx, o.provider.channel(o.token))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, errors.Join(ErrOracleUnavailable, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	unsubscribe := sync.OnceValue(func() error {
		cancel()
		return ps.Close()
	})

	log := o.provider.log
	go func() {
		defer func() { _ = unsubscribe() }()

		ch := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var c Change
				if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
					log.WarnContext(ctx, "malformed session change", logger.Error(err))
					continue
				}
				h(ctx, c)
			}
		}
	}()

	return SubscriptionFunc(unsubscribe), nil
}
