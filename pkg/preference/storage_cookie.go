package preference

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/dmitrymomot/interviewkit/pkg/cookie"
)

// CookieStorage persists values in signed cookies of one request/response
// pair. Values written during the request are visible to later reads of the
// same request.
type CookieStorage struct {
	mgr    *cookie.Manager
	w      http.ResponseWriter
	r      *http.Request
	maxAge int

	mu      sync.Mutex
	written map[string]string
}

// NewCookieStorage binds storage to w and r. maxAge is the cookie lifetime in seconds.
func NewCookieStorage(mgr *cookie.Manager, w http.ResponseWriter, r *http.Request, maxAge int) *CookieStorage {
	return &CookieStorage{
		mgr:     mgr,
		w:       w,
		r:       r,
		maxAge:  maxAge,
		written: make(map[string]string),
	}
}

func (s *CookieStorage) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	v, ok := s.written[key]
	s.mu.Unlock()
	if ok {
		return v, nil
	}

	v, err := s.mgr.GetSigned(s.r, key)
	if err != nil {
		if errors.Is(err, cookie.ErrCookieNotFound) {
			return "", ErrNotFound
		}
		return "", errors.Join(ErrStorageUnavailable, err)
	}
	return v, nil
}

func (s *CookieStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mgr.SetSigned(s.w, key, value, cookie.WithMaxAge(s.maxAge))
	s.written[key] = value
	return nil
}
