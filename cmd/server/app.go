package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/interviewkit/pkg/cookie"
	"github.com/dmitrymomot/interviewkit/pkg/httpserver"
	"github.com/dmitrymomot/interviewkit/pkg/preference"
	"github.com/dmitrymomot/interviewkit/pkg/requestid"
	"github.com/dmitrymomot/interviewkit/pkg/sessionguard"
)

type appConfig struct {
	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"sid"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// sessionProvider is satisfied by both the Redis and the Postgres providers.
type sessionProvider interface {
	For(token string) sessionguard.Oracle
	Resolver(cookieName string) sessionguard.OracleResolver
	SignIn(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, *sessionguard.Session, error)
	SignOut(ctx context.Context, token string) error
}

type app struct {
	log      *slog.Logger
	cfg      appConfig
	cookies  *cookie.Manager
	sessions sessionProvider
	guard    []sessionguard.Option
	prefCfg  preference.Config
	probes   []httpserver.Probe
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthHandler(a.log, time.Second))
	r.Get("/readyz", httpserver.HealthHandler(a.log, 2*time.Second, a.probes...))

	r.Group(func(r chi.Router) {
		r.Use(preference.Middleware(a.cookies, a.prefCfg, preference.WithLogger(a.log)))

		r.Get("/", a.landing)
		r.Post("/session", a.signIn)
		r.Post("/session/signout", a.signOut)
		r.Post("/preferences/theme/toggle", a.toggleTheme)

		r.Route("/app", func(r chi.Router) {
			r.With(sessionguard.Middleware(a.sessions.Resolver(a.cfg.SessionCookie), a.guard...)).
				Get("/", a.dashboard)
			r.Get("/live", a.live)
		})
	})

	return r
}
