package main

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.924 generate -f pages.templ

import (
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/interviewkit/pkg/preference"
	"github.com/dmitrymomot/interviewkit/pkg/sessionguard"
)

func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	templ.Handler(c).ServeHTTP(w, r)
}

type sessionSignal struct {
	State string `json:"state"`
	Gate  string `json:"gate"`
}

// themeSignals is the initial datastar signal set for the document body.
func themeSignals(theme preference.Theme) string {
	return signalsJSON(map[string]string{"theme": theme.String()})
}

// sessionSignals mirrors the shape patched by the /app/live stream.
func sessionSignals(state sessionguard.State) string {
	return signalsJSON(map[string]sessionSignal{"session": {
		State: state.Name(),
		Gate:  sessionguard.GateOf(state).String(),
	}})
}

func signalsJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
