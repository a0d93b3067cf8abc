package preference_test

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type storageMock struct {
	mock.Mock
}

func (m *storageMock) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *storageMock) Set(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}
