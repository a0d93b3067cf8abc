package preference

import "log/slog"

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage key. Defaults to "theme".
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithAmbient sets the ambient signal consulted when nothing valid is persisted.
func WithAmbient(signal AmbientSignal) Option {
	return func(s *Store) { s.ambient = signal }
}

// WithApplier sets the display side effect run on every transition.
func WithApplier(apply Applier) Option {
	return func(s *Store) {
		if apply != nil {
			s.apply = apply
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}
