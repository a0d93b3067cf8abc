package sessionguard_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/interviewkit/pkg/sessionguard"
)

type oracleMock struct {
	mock.Mock

	mu      sync.Mutex
	handler sessionguard.ChangeHandler
}

func (m *oracleMock) CurrentSession(ctx context.Context) (*sessionguard.Session, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*sessionguard.Session)
	return s, args.Error(1)
}

func (m *oracleMock) OnSessionChange(ctx context.Context, h sessionguard.ChangeHandler) (sessionguard.Subscription, error) {
	args := m.Called(ctx, h)
	if args.Error(1) == nil {
		m.mu.Lock()
		m.handler = h
		m.mu.Unlock()
	}
	sub, _ := args.Get(0).(sessionguard.Subscription)
	return sub, args.Error(1)
}

// emit delivers a change synchronously, the way a provider callback would.
func (m *oracleMock) emit(c sessionguard.Change) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h(context.Background(), c)
	}
}

type subscriptionMock struct {
	mock.Mock
}

func (m *subscriptionMock) Unsubscribe() error {
	return m.Called().Error(0)
}
