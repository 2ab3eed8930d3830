package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Provider is a mock implementation of data.Provider.
type Provider struct {
	mock.Mock
}

// GetData is a mock implementation of the GetData method.
func (m *Provider) GetData(ctx context.Context) (map[string]any, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

// AddDataToContext is a mock implementation of the AddDataToContext method.
func (m *Provider) AddDataToContext(ctx context.Context, d ...map[string]any) (context.Context, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(context.Context), args.Error(1)
}
