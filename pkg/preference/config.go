package preference

import "time"

// Config holds preference settings loadable from the environment.
type Config struct {
	Key          string        `env:"PREFERENCE_KEY" envDefault:"theme"`
	CookieMaxAge time.Duration `env:"PREFERENCE_COOKIE_MAX_AGE" envDefault:"8760h"`
	RedisPrefix  string        `env:"PREFERENCE_REDIS_PREFIX" envDefault:"prefs:"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Key:          "theme",
		CookieMaxAge: 365 * 24 * time.Hour,
		RedisPrefix:  "prefs:",
	}
}
