package sessionguard

import (
	"context"
	"io/fs"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/interviewkit/pkg/broadcast"
)

func TestDecodeNotification(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("signed in", func(t *testing.T) {
		t.Parallel()
		token, change, err := decodeNotification(&pgconn.Notification{
			Payload: `{"token":"abc","event":"signed_in","user_id":"` + userID.String() + `","expires_at":"2030-01-02T03:04:05.123456+00:00"}`,
		})
		require.NoError(t, err)
		assert.Equal(t, "abc", token)
		assert.Equal(t, EventSignedIn, change.Event)
		require.NotNil(t, change.Session)
		assert.Equal(t, userID, change.Session.UserID)
		assert.Equal(t, 2030, change.Session.ExpiresAt.Year())
	})

	t.Run("signed out carries no session", func(t *testing.T) {
		t.Parallel()
		_, change, err := decodeNotification(&pgconn.Notification{
			Payload: `{"token":"abc","event":"signed_out","user_id":"` + userID.String() + `","expires_at":"2030-01-02T03:04:05+00:00"}`,
		})
		require.NoError(t, err)
		assert.Equal(t, EventSignedOut, change.Event)
		assert.Nil(t, change.Session)
	})

	t.Run("delete without expiry", func(t *testing.T) {
		t.Parallel()
		_, change, err := decodeNotification(&pgconn.Notification{
			Payload: `{"token":"abc","event":"signed_out","user_id":"` + userID.String() + `"}`,
		})
		require.NoError(t, err)
		assert.Nil(t, change.Session)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		_, _, err := decodeNotification(&pgconn.Notification{Payload: "nope"})
		assert.Error(t, err)

		_, _, err = decodeNotification(&pgconn.Notification{Payload: `{"event":"signed_out"}`})
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPostgresProvider_WithoutDatabase(t *testing.T) {
	t.Parallel()

	p := NewPostgresProvider(nil, WithReconnectDelay(time.Millisecond))

	_, isAnonymous := p.For("").(anonymous)
	assert.True(t, isAnonymous)

	_, err := p.For("abc").OnSessionChange(context.Background(), func(context.Context, Change) {})
	assert.ErrorIs(t, err, ErrNotStarted)

	_, _, err = p.SignIn(context.Background(), uuid.New(), 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)
	assert.ErrorIs(t, p.SignOut(context.Background(), ""), ErrInvalidToken)

	require.NoError(t, p.Close())
}

func TestMigrations(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(Migrations(), ".")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "00001_auth_sessions.sql", entries[0].Name())

	body, err := fs.ReadFile(Migrations(), entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
}

func TestMigrations_NotifyChannelMatchesListener(t *testing.T) {
	t.Parallel()

	body, err := fs.ReadFile(Migrations(), "00001_auth_sessions.sql")
	require.NoError(t, err)

	calls := regexp.MustCompile(`pg_notify\('([a-z_]+)'`).FindAllStringSubmatch(string(body), -1)
	require.NotEmpty(t, calls)
	for _, call := range calls {
		assert.Equal(t, NotifyChannel, call[1], "trigger notifies a channel the provider does not listen on")
	}

	p := NewPostgresProvider(nil)
	assert.Equal(t, NotifyChannel, p.channel)
}

func TestMissingTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"b", "d"}, missingTokens([]string{"a", "b", "c", "d"}, []string{"c", "a", "x"}))
	assert.Empty(t, missingTokens([]string{"a"}, []string{"a"}))
	assert.Equal(t, []string{"a"}, missingTokens([]string{"a"}, nil))
}

func TestPostgresProvider_WatchedTokens(t *testing.T) {
	t.Parallel()

	p := NewPostgresProvider(nil, WithProviderLogger(slog.New(slog.DiscardHandler)))
	p.started = true
	t.Cleanup(func() { _ = p.Close() })

	changes := make(chan Change, 4)
	handler := func(_ context.Context, c Change) { changes <- c }

	first, err := p.For("abc").OnSessionChange(context.Background(), handler)
	require.NoError(t, err)
	second, err := p.For("abc").OnSessionChange(context.Background(), handler)
	require.NoError(t, err)
	other, err := p.For("xyz").OnSessionChange(context.Background(), handler)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"abc", "xyz"}, p.watchedTokens())

	// A resync sign-out reaches only subscribers of that token.
	require.NoError(t, p.events.Broadcast(context.Background(), broadcast.Message[Change]{
		Topic: "abc",
		Data:  Change{Event: EventSignedOut},
	}))
	for range 2 {
		select {
		case c := <-changes:
			assert.Equal(t, EventSignedOut, c.Event)
		case <-time.After(time.Second):
			require.FailNow(t, "sign-out not delivered")
		}
	}
	select {
	case c := <-changes:
		require.Failf(t, "unexpected change", "%+v", c)
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, first.Unsubscribe())
	require.NoError(t, first.Unsubscribe())
	assert.ElementsMatch(t, []string{"abc", "xyz"}, p.watchedTokens())

	require.NoError(t, second.Unsubscribe())
	require.NoError(t, other.Unsubscribe())
	assert.Empty(t, p.watchedTokens())
}
