package main

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/interviewkit/pkg/cookie"
	"github.com/dmitrymomot/interviewkit/pkg/logger"
	"github.com/dmitrymomot/interviewkit/pkg/preference"
	"github.com/dmitrymomot/interviewkit/pkg/sessionguard"
)

func (a *app) landing(w http.ResponseWriter, r *http.Request) {
	render(w, r, landingPage(themeOf(r)))
}

func (a *app) dashboard(w http.ResponseWriter, r *http.Request) {
	g := sessionguard.FromContext(r.Context())
	render(w, r, dashboardPage(themeOf(r), g.State()))
}

// live follows the session of the requesting client for as long as the
// dashboard is open.
func (a *app) live(w http.ResponseWriter, r *http.Request) {
	token := sessionguard.TokenFromRequest(r, a.cfg.SessionCookie)
	if err := sessionguard.Watch(w, r, a.sessions.For(token), a.guard...); err != nil {
		a.log.WarnContext(r.Context(), "session stream ended with error", logger.Error(err))
	}
}

// signIn issues a session for a fresh demo user. Credential checks belong to
// the identity provider.
func (a *app) signIn(w http.ResponseWriter, r *http.Request) {
	token, session, err := a.sessions.SignIn(r.Context(), uuid.New(), a.cfg.SessionTTL)
	if err != nil {
		a.log.ErrorContext(r.Context(), "sign in failed", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}

	a.cookies.Set(w, a.cfg.SessionCookie, token, cookie.WithMaxAge(int(a.cfg.SessionTTL.Seconds())))
	a.log.InfoContext(r.Context(), "signed in", logger.UserID(session.UserID))
	http.Redirect(w, r, "/app", http.StatusSeeOther)
}

// signOut revokes the session. Open dashboards of the same token learn about
// it through their live stream.
func (a *app) signOut(w http.ResponseWriter, r *http.Request) {
	if token := sessionguard.TokenFromRequest(r, a.cfg.SessionCookie); token != "" {
		if err := a.sessions.SignOut(r.Context(), token); err != nil {
			a.log.ErrorContext(r.Context(), "sign out failed", logger.Error(err))
		}
	}
	a.cookies.Delete(w, a.cfg.SessionCookie)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type themeSignal struct {
	Theme string `json:"theme"`
}

// toggleTheme flips the preference. The cookie is written before the stream
// starts, then the new value is patched into the page's theme signal.
func (a *app) toggleTheme(w http.ResponseWriter, r *http.Request) {
	store := preference.FromContext(r.Context())
	if store == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	theme := store.Toggle(r.Context())

	if !sessionguard.IsDatastarRequest(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	payload, err := json.Marshal(themeSignal{Theme: theme.String()})
	if err != nil {
		a.log.ErrorContext(r.Context(), "encode theme signal", logger.Error(err))
		return
	}
	sse := datastar.NewSSE(w, r)
	if err := sse.PatchSignals(payload); err != nil {
		a.log.WarnContext(r.Context(), "patch theme signal", logger.Error(err))
	}
}

func themeOf(r *http.Request) preference.Theme {
	if s := preference.FromContext(r.Context()); s != nil {
		return s.Get()
	}
	return preference.Default
}
