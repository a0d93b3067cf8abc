package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/interviewkit/pkg/logger"
)

func TestGroup(t *testing.T) {
	t.Parallel()
	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

func TestErrors(t *testing.T) {
	t.Parallel()
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	assert.True(t, logger.Errors(nil).Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())
	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestNilableIDs(t *testing.T) {
	t.Parallel()
	assert.True(t, logger.UserID(nil).Equal(slog.Attr{}))
	assert.True(t, logger.GuardID(nil).Equal(slog.Attr{}))
	assert.Equal(t, "user_id", logger.UserID("u-1").Key)
	assert.Equal(t, "guard_id", logger.GuardID("g-1").Key)
}

func TestDomainAttrs(t *testing.T) {
	t.Parallel()

	tr := logger.Transition("initializing", "verified", "session_found")
	require.Equal(t, "transition", tr.Key)
	g := tr.Value.Group()
	require.Len(t, g, 3)
	assert.Equal(t, "initializing", g[0].Value.String())
	assert.Equal(t, "verified", g[1].Value.String())
	assert.Equal(t, "session_found", g[2].Value.String())

	assert.True(t, logger.SessionState("absent").Equal(slog.String("session_state", "absent")))
	assert.True(t, logger.Theme("dark").Equal(slog.String("theme", "dark")))
	assert.True(t, logger.Redirect("/").Equal(slog.String("redirect_to", "/")))
	assert.True(t, logger.Component("preference").Equal(slog.String("component", "preference")))
	assert.True(t, logger.Event("SIGNED_OUT").Equal(slog.String("event", "SIGNED_OUT")))
	assert.Equal(t, time.Second, logger.Duration(time.Second).Value.Duration())
}
