package sessionguard_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/interviewkit/pkg/logger"
	"github.com/dmitrymomot/interviewkit/pkg/sessionguard"
)

func waitRedirect(t *testing.T, g *sessionguard.Guard) sessionguard.Redirect {
	t.Helper()
	select {
	case cmd, ok := <-g.Redirects():
		require.True(t, ok, "redirect channel closed")
		return cmd
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for redirect")
	}
	return sessionguard.Redirect{}
}

func TestMemoryOracle(t *testing.T) {
	t.Parallel()

	t.Run("session lifecycle", func(t *testing.T) {
		t.Parallel()
		oracle := sessionguard.NewMemoryOracle()
		t.Cleanup(func() { _ = oracle.Close() })
		ctx := context.Background()

		s, err := oracle.CurrentSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, s)

		userID := uuid.New()
		oracle.SignIn(userID, time.Hour)
		s, err = oracle.CurrentSession(ctx)
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, userID, s.UserID)

		oracle.SignOut()
		s, err = oracle.CurrentSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("fail", func(t *testing.T) {
		t.Parallel()
		oracle := sessionguard.NewMemoryOracle()
		t.Cleanup(func() { _ = oracle.Close() })
		cause := errors.New("provider down")

		oracle.Fail(cause)
		_, err := oracle.CurrentSession(context.Background())
		assert.ErrorIs(t, err, cause)

		oracle.Fail(nil)
		_, err = oracle.CurrentSession(context.Background())
		assert.NoError(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		oracle := sessionguard.NewMemoryOracle()
		t.Cleanup(func() { _ = oracle.Close() })

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := oracle.CurrentSession(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("closed provider refuses subscriptions", func(t *testing.T) {
		t.Parallel()
		oracle := sessionguard.NewMemoryOracle()
		require.NoError(t, oracle.Close())

		_, err := oracle.OnSessionChange(context.Background(), func(context.Context, sessionguard.Change) {})
		assert.ErrorIs(t, err, sessionguard.ErrProviderClosed)
	})
}

func TestGuard_WithMemoryOracle(t *testing.T) {
	t.Parallel()

	t.Run("verified then signed out", func(t *testing.T) {
		t.Parallel()
		oracle := sessionguard.NewMemoryOracle()
		t.Cleanup(func() { _ = oracle.Close() })
		oracle.SignIn(uuid.New(), time.Hour)

		g := newGuard(oracle)
		t.Cleanup(func() { _ = g.Release() })

		require.Equal(t, sessionguard.StateVerified, g.Mount(context.Background()))
		assert.Equal(t, 1, oracle.Subscribers())

		oracle.Refresh(2 * time.Hour)
		oracle.SignOut()

		cmd := waitRedirect(t, g)
		assert.Equal(t, sessionguard.ReasonSignedOut, cmd.Reason)
		assert.Equal(t, "/login", cmd.To)
		assert.Equal(t, sessionguard.StateAbsent, g.State())
	})

	t.Run("release unsubscribes", func(t *testing.T) {
		t.Parallel()
		oracle := sessionguard.NewMemoryOracle()
		t.Cleanup(func() { _ = oracle.Close() })
		oracle.SignIn(uuid.New(), 0)

		g := newGuard(oracle)
		g.Mount(context.Background())
		require.Equal(t, 1, oracle.Subscribers())

		require.NoError(t, g.Release())
		assert.Equal(t, 0, oracle.Subscribers())

		oracle.SignOut()
		assert.Equal(t, sessionguard.StateVerified, g.State())
	})

	t.Run("guards are independent", func(t *testing.T) {
		t.Parallel()
		oracle := sessionguard.NewMemoryOracle()
		t.Cleanup(func() { _ = oracle.Close() })
		oracle.SignIn(uuid.New(), time.Hour)

		first := newGuard(oracle)
		second := newGuard(oracle)
		t.Cleanup(func() { _ = second.Release() })

		first.Mount(context.Background())
		second.Mount(context.Background())
		require.NoError(t, first.Release())

		oracle.SignOut()
		waitRedirect(t, second)
		assert.Equal(t, sessionguard.StateVerified, first.State())
		assert.Equal(t, sessionguard.StateAbsent, second.State())
	})
}

func TestRun(t *testing.T) {
	t.Parallel()

	oracle := sessionguard.NewMemoryOracle()
	t.Cleanup(func() { _ = oracle.Close() })
	oracle.SignIn(uuid.New(), time.Hour)

	t.Run("releases after fn returns", func(t *testing.T) {
		t.Parallel()
		var seen *sessionguard.Guard
		want := errors.New("render failed")

		err := sessionguard.Run(context.Background(), oracle, func(_ context.Context, g *sessionguard.Guard) error {
			seen = g
			assert.Equal(t, sessionguard.StateVerified, g.State())
			assert.False(t, g.Released())
			return want
		}, sessionguard.WithLogger(logger.Nop()))

		assert.ErrorIs(t, err, want)
		require.NotNil(t, seen)
		assert.True(t, seen.Released())
	})

	t.Run("releases on panic", func(t *testing.T) {
		t.Parallel()
		var seen *sessionguard.Guard

		assert.Panics(t, func() {
			_ = sessionguard.Run(context.Background(), oracle, func(_ context.Context, g *sessionguard.Guard) error {
				seen = g
				panic("boom")
			}, sessionguard.WithLogger(logger.Nop()))
		})
		require.NotNil(t, seen)
		assert.True(t, seen.Released())
	})
}

// lockedBuffer is a goroutine safe log sink.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestMemoryOracle_DroppedChangesAreReported(t *testing.T) {
	t.Parallel()

	out := &lockedBuffer{}
	oracle := sessionguard.NewMemoryOracle(
		sessionguard.WithSubscriberBuffer(1),
		sessionguard.WithProviderLogger(logger.New(logger.WithOutput(out))),
	)
	t.Cleanup(func() { _ = oracle.Close() })

	entered := make(chan struct{}, 1)
	unblock := make(chan struct{})
	var handled atomic.Int32
	sub, err := oracle.OnSessionChange(context.Background(), func(context.Context, sessionguard.Change) {
		if handled.Add(1) == 1 {
			entered <- struct{}{}
			<-unblock
		}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Unsubscribe() })

	oracle.SignIn(uuid.New(), time.Hour)
	<-entered

	// One change fits the buffer, the next one is lost.
	oracle.SignOut()
	oracle.SignOut()
	assert.NotContains(t, out.String(), "session changes dropped")

	close(unblock)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "session changes dropped")
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), `"dropped":1`)
	assert.Contains(t, out.String(), `"level":"WARN"`)
	require.Eventually(t, func() bool { return handled.Load() == 2 }, time.Second, 10*time.Millisecond)
}
