package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/robbyt/go-scriptbridge/platform/value"
)

// Runtime is a mock implementation of platform.Runtime for testing purposes.
type Runtime struct {
	mock.Mock
}

// Run is a mock implementation of the Run method.
func (m *Runtime) Run(ctx context.Context, script string) (value.Value, error) {
	args := m.Called(ctx, script)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(value.Value), args.Error(1)
}

// ConcurrentRuntime is a Runtime mock that reports itself safe for concurrent use.
type ConcurrentRuntime struct {
	Runtime
}

// ConcurrencySafe always reports true.
func (m *ConcurrentRuntime) ConcurrencySafe() bool { return true }
