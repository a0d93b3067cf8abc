package preference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/interviewkit/pkg/logger"
)

// Store owns the theme of one client. The persisted entry is the source of
// truth: Initialize reconciles from it, Set and Toggle write through to it.
//
// Every transition updates memory, persists and applies the display side
// effect inside one critical section, so callers never observe the three
// disagreeing. Persistence is best effort; its failures are logged and
// swallowed.
type Store struct {
	key     string
	storage Storage
	ambient AmbientSignal
	apply   Applier
	log     *slog.Logger

	mu          sync.Mutex
	theme       Theme
	initialized bool
}

// NewStore creates a store on top of storage. A nil storage keeps the
// preference in memory only.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		key:     DefaultConfig().Key,
		storage: storage,
		apply:   func(Theme) {},
		log:     slog.Default(),
		theme:   Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("preference"))
	return s
}

// Initialize adopts the persisted theme if it is valid, else Dark when the
// ambient signal prefers dark, else Light, and applies it. Calling it again
// re-reads storage and re-applies the same value.
func (s *Store) Initialize(ctx context.Context) Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = s.resolve(ctx)
	s.initialized = true
	s.apply(s.theme)

	s.log.DebugContext(ctx, "preference initialized", logger.Theme(s.theme.String()))
	return s.theme
}

// Initialized reports whether Initialize has run.
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Get returns the current theme.
func (s *Store) Get() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Set makes theme current, persists it and applies it.
// It panics if theme is neither Light nor Dark.
func (s *Store) Set(ctx context.Context, theme Theme) {
	if !theme.Valid() {
		panic(fmt.Sprintf("preference: invalid theme %q", string(theme)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(ctx, theme)
}

// Toggle switches to the complement of the current theme and returns it.
func (s *Store) Toggle(ctx context.Context) Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.theme.Complement()
	s.set(ctx, next)
	return next
}

// set must be called with s.mu held.
func (s *Store) set(ctx context.Context, theme Theme) {
	s.theme = theme

	if s.storage != nil {
		if err := s.storage.Set(ctx, s.key, theme.String()); err != nil {
			s.log.WarnContext(ctx, "failed to persist preference",
				logger.Theme(theme.String()),
				logger.Error(err))
		}
	}

	s.apply(theme)
}

// resolve must be called with s.mu held.
func (s *Store) resolve(ctx context.Context) Theme {
	if s.storage != nil {
		raw, err := s.storage.Get(ctx, s.key)
		switch {
		case err == nil:
			if theme, ok := ParseTheme(raw); ok {
				return theme
			}
			s.log.DebugContext(ctx, "ignoring invalid persisted preference", slog.String("value", raw))
		case errors.Is(err, ErrNotFound):
		default:
			s.log.WarnContext(ctx, "failed to read preference", logger.Error(err))
		}
	}

	if s.ambient != nil && s.ambient(ctx) {
		return Dark
	}
	return Default
}
