package preference

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/interviewkit/pkg/cookie"
)

type storeCtxKey struct{}

// WithStore stores s in ctx.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeCtxKey{}, s)
}

// FromContext returns the store placed by Middleware, or nil.
func FromContext(ctx context.Context) *Store {
	s, _ := ctx.Value(storeCtxKey{}).(*Store)
	return s
}

// Middleware gives every request an initialized store backed by a signed
// cookie, with the Sec-CH-Prefers-Color-Scheme client hint as ambient signal.
func Middleware(mgr *cookie.Manager, cfg Config, opts ...Option) func(http.Handler) http.Handler {
	maxAge := int(cfg.CookieMaxAge.Seconds())
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			AdvertiseClientHints(w)

			storeOpts := append([]Option{
				WithKey(cfg.Key),
				WithAmbient(ClientHint(r)),
			}, opts...)
			s := NewStore(NewCookieStorage(mgr, w, r, maxAge), storeOpts...)
			s.Initialize(r.Context())

			next.ServeHTTP(w, r.WithContext(WithStore(r.Context(), s)))
		})
	}
}
