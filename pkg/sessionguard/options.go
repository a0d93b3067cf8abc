package sessionguard

import (
	"log/slog"
	"time"
)

// Option configures a Guard.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	redirectTo     string
	checkTimeout   time.Duration
	redirectBuffer int
	now            func() time.Time
	id             string
}

func defaultOptions() options {
	cfg := DefaultConfig()
	return options{
		redirectTo:     cfg.RedirectTo,
		checkTimeout:   cfg.CheckTimeout,
		redirectBuffer: cfg.RedirectBuffer,
		now:            time.Now,
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRedirectTo sets the public entry point used by redirect commands.
func WithRedirectTo(path string) Option {
	return func(o *options) {
		if path != "" {
			o.redirectTo = path
		}
	}
}

// WithCheckTimeout bounds the oracle call made by Check.
// Zero or a negative value waits until the caller's context ends.
func WithCheckTimeout(d time.Duration) Option {
	return func(o *options) { o.checkTimeout = d }
}

// WithRedirectBuffer sets the capacity of the redirect command channel.
func WithRedirectBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.redirectBuffer = n
		}
	}
}

// WithClock replaces time.Now when judging session expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithID overrides the generated guard identifier used in logs.
func WithID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.id = id
		}
	}
}

// ProviderOption configures the Redis and Postgres session providers.
type ProviderOption func(*providerOptions)

type providerOptions struct {
	logger         *slog.Logger
	prefix         string
	bufferSize     int
	reconnectDelay time.Duration
	now            func() time.Time
}

func defaultProviderOptions() providerOptions {
	return providerOptions{
		logger:         slog.Default(),
		prefix:         "auth:",
		bufferSize:     16,
		reconnectDelay: time.Second,
		now:            time.Now,
	}
}

// WithProviderLogger sets the provider logger. Defaults to slog.Default().
func WithProviderLogger(l *slog.Logger) ProviderOption {
	return func(o *providerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithKeyPrefix sets the Redis key and channel prefix. Defaults to "auth:".
func WithKeyPrefix(prefix string) ProviderOption {
	return func(o *providerOptions) { o.prefix = prefix }
}

// WithSubscriberBuffer sets how many pending changes a slow subscriber may queue.
func WithSubscriberBuffer(n int) ProviderOption {
	return func(o *providerOptions) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithReconnectDelay sets the pause before the Postgres listener reconnects.
func WithReconnectDelay(d time.Duration) ProviderOption {
	return func(o *providerOptions) {
		if d > 0 {
			o.reconnectDelay = d
		}
	}
}

// WithProviderClock replaces time.Now for session expiry.
func WithProviderClock(now func() time.Time) ProviderOption {
	return func(o *providerOptions) {
		if now != nil {
			o.now = now
		}
	}
}
