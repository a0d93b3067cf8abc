package sessionguard

import "time"

// Config holds guard settings loadable from the environment.
type Config struct {
	RedirectTo     string        `env:"SESSIONGUARD_REDIRECT_TO" envDefault:"/"`
	CheckTimeout   time.Duration `env:"SESSIONGUARD_CHECK_TIMEOUT" envDefault:"10s"`
	RedirectBuffer int           `env:"SESSIONGUARD_REDIRECT_BUFFER" envDefault:"4"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		RedirectTo:     "/",
		CheckTimeout:   10 * time.Second,
		RedirectBuffer: 4,
	}
}

// Options translates cfg into guard options.
func (c Config) Options() []Option {
	return []Option{
		WithRedirectTo(c.RedirectTo),
		WithCheckTimeout(c.CheckTimeout),
		WithRedirectBuffer(c.RedirectBuffer),
	}
}
