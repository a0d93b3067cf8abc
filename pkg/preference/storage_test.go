package preference_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/interviewkit/pkg/cookie"
	"github.com/dmitrymomot/interviewkit/pkg/preference"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestMemoryStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := preference.NewMemoryStorage()

	_, err := s.Get(ctx, "theme")
	assert.ErrorIs(t, err, preference.ErrNotFound)

	require.NoError(t, s.Set(ctx, "theme", "dark"))
	v, err := s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)
}

func TestRedisStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := preference.NewRedisStorage(client, "prefs:user-1:")

	_, err := s.Get(ctx, "theme")
	assert.ErrorIs(t, err, preference.ErrNotFound)

	require.NoError(t, s.Set(ctx, "theme", "dark"))
	got, err := srv.Get("prefs:user-1:theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", got)

	v, err := s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)

	store := preference.NewStore(s)
	assert.Equal(t, preference.Dark, store.Initialize(ctx))

	srv.Close()
	_, err = s.Get(ctx, "theme")
	assert.ErrorIs(t, err, preference.ErrStorageUnavailable)
	assert.ErrorIs(t, s.Set(ctx, "theme", "light"), preference.ErrStorageUnavailable)
}

func TestCookieStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mgr, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	s := preference.NewCookieStorage(mgr, rec, req, 3600)

	_, err = s.Get(ctx, "theme")
	assert.ErrorIs(t, err, preference.ErrNotFound)

	require.NoError(t, s.Set(ctx, "theme", "dark"))

	v, err := s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v, "written value is visible within the request")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "theme", cookies[0].Name)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	v, err = preference.NewCookieStorage(mgr, httptest.NewRecorder(), next, 3600).Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)

	forged := httptest.NewRequest(http.MethodGet, "/", nil)
	forged.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	_, err = preference.NewCookieStorage(mgr, httptest.NewRecorder(), forged, 3600).Get(ctx, "theme")
	assert.ErrorIs(t, err, preference.ErrStorageUnavailable)
}
