package preference

import (
	"context"
	"net/http"
	"strings"
)

// AmbientSignal reports whether the environment prefers a dark appearance.
// The store reads it once per Initialize.
type AmbientSignal func(ctx context.Context) bool

// Applier applies the display side effect of a theme.
type Applier func(theme Theme)

// PrefersColorSchemeHeader is the user agent client hint carrying the OS preference.
const PrefersColorSchemeHeader = "Sec-CH-Prefers-Color-Scheme"

// ClientHint reads the ambient signal from the request's client hint.
func ClientHint(r *http.Request) AmbientSignal {
	dark := strings.EqualFold(strings.Trim(r.Header.Get(PrefersColorSchemeHeader), `" `), "dark")
	return func(context.Context) bool { return dark }
}

// AdvertiseClientHints asks the browser to send the color scheme hint on
// later requests and marks responses as varying on it.
func AdvertiseClientHints(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Accept-CH", PrefersColorSchemeHeader)
	h.Set("Critical-CH", PrefersColorSchemeHeader)
	h.Add("Vary", PrefersColorSchemeHeader)
}

// Static returns a signal with a fixed answer.
func Static(dark bool) AmbientSignal {
	return func(context.Context) bool { return dark }
}
