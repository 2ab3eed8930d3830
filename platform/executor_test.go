package platform_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-scriptbridge/engines/mocks"
	"github.com/robbyt/go-scriptbridge/platform"
	"github.com/robbyt/go-scriptbridge/platform/scripterr"
	"github.com/robbyt/go-scriptbridge/platform/value"
)

func newExecutor(t *testing.T, rt platform.Runtime, opts ...platform.Option) *platform.Executor {
	t.Helper()
	opts = append([]platform.Option{platform.WithLogHandler(slog.DiscardHandler)}, opts...)
	e, err := platform.New(rt, opts...)
	require.NoError(t, err)
	return e
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil runtime", func(t *testing.T) {
		t.Parallel()
		_, err := platform.New(nil)
		require.ErrorIs(t, err, platform.ErrNilRuntime)
	})

	t.Run("invalid option", func(t *testing.T) {
		t.Parallel()
		_, err := platform.New(new(mocks.Runtime), platform.WithLogger(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logger cannot be nil")
	})

	t.Run("fresh executor has no outcome", func(t *testing.T) {
		t.Parallel()
		e := newExecutor(t, new(mocks.Runtime))
		assert.NotEmpty(t, e.ID())
		assert.Equal(t, platform.StateUninitialized, e.State())
		assert.Nil(t, e.Outcome())

		v, ok := e.Result()
		assert.False(t, ok)
		assert.Nil(t, v)
		rec, ok := e.Errors()
		assert.False(t, ok)
		assert.Nil(t, rec)
	})

	t.Run("custom id", func(t *testing.T) {
		t.Parallel()
		e := newExecutor(t, new(mocks.Runtime), platform.WithID("job-1"))
		assert.Equal(t, "job-1", e.ID())
	})
}

func TestExecuteOutcomes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name       string
		runValue   value.Value
		runErr     error
		wantValue  value.Value
		wantRecord *scripterr.Record
	}{
		{
			name:      "success",
			runValue:  value.List{value.Integer(1), value.Real(2)},
			wantValue: value.List{value.Integer(1), value.Real(2)},
		},
		{
			name:      "nil value becomes null",
			runValue:  nil,
			wantValue: value.Null{},
		},
		{
			name:       "script error record",
			runErr:     scripterr.New(scripterr.CodeNotUnderstood, "Can't continue foo."),
			wantRecord: scripterr.New(scripterr.CodeNotUnderstood, "Can't continue foo."),
		},
		{
			name:       "missing parameter",
			runErr:     &scripterr.Record{Code: -1708, Message: "A parameter is missing"},
			wantRecord: &scripterr.Record{Code: -1708, Message: "A parameter is missing"},
		},
		{
			name:       "wrapped record",
			runErr:     fmt.Errorf("evaluating: %w", scripterr.New(scripterr.CodeGeneric, "boom", scripterr.WithRange(1, 4))),
			wantRecord: scripterr.New(scripterr.CodeGeneric, "boom", scripterr.WithRange(1, 4)),
		},
		{
			name:       "unknown error keeps raw message",
			runErr:     errors.New("something odd happened"),
			wantRecord: &scripterr.Record{Code: 0, Message: "something odd happened"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rt := new(mocks.Runtime)
			rt.On("Run", mock.Anything, "the script").Return(tt.runValue, tt.runErr).Once()

			e := newExecutor(t, rt)
			require.NoError(t, e.Execute(ctx, "the script"))
			rt.AssertExpectations(t)

			v, gotValue := e.Result()
			rec, gotRecord := e.Errors()
			// exactly one side is present
			assert.NotEqual(t, gotValue, gotRecord)

			if tt.wantRecord != nil {
				require.True(t, gotRecord)
				assert.Equal(t, tt.wantRecord, rec)
				assert.Equal(t, platform.StateFailed, e.State())
				assert.False(t, e.Outcome().Succeeded())
				return
			}
			require.True(t, gotValue)
			assert.Equal(t, tt.wantValue, v)
			assert.Equal(t, platform.StateSucceeded, e.State())
			assert.True(t, e.Outcome().Succeeded())
		})
	}
}

func TestExecuteIsOneShot(t *testing.T) {
	t.Parallel()

	rt := new(mocks.Runtime)
	rt.On("Run", mock.Anything, "first").Return(value.Text("one"), nil).Once()

	e := newExecutor(t, rt)
	require.NoError(t, e.Execute(context.Background(), "first"))

	err := e.Execute(context.Background(), "second")
	require.ErrorIs(t, err, platform.ErrAlreadyExecuted)

	v, ok := e.Result()
	require.True(t, ok)
	assert.Equal(t, value.Text("one"), v)
	rt.AssertNumberOfCalls(t, "Run", 1)
}

func TestExecuteAfterOutcomeReportsAlreadyExecuted(t *testing.T) {
	t.Parallel()

	rt := new(mocks.Runtime)
	rt.On("Run", mock.Anything, "first").Return(value.Text("one"), nil).Once()

	e := newExecutor(t, rt)
	require.NoError(t, e.Execute(context.Background(), "first"))

	for _, script := range []string{"", "  ", "second"} {
		require.ErrorIs(t, e.Execute(context.Background(), script), platform.ErrAlreadyExecuted)
	}
	rt.AssertNumberOfCalls(t, "Run", 1)
}

func TestErrorRecordIsCopied(t *testing.T) {
	t.Parallel()

	original := scripterr.New(scripterr.CodeGeneric, "boom", scripterr.WithRange(2, 5))
	rt := new(mocks.Runtime)
	rt.On("Run", mock.Anything, "x").Return(nil, original).Once()

	e := newExecutor(t, rt)
	require.NoError(t, e.Execute(context.Background(), "x"))

	rec, ok := e.Errors()
	require.True(t, ok)
	assert.NotSame(t, original, rec)

	// mutations by the runtime or a caller do not reach the stored outcome
	original.Message = "changed by runtime"
	original.Range.Start = 99
	rec.Code = 0
	rec.Range.End = 0

	again, ok := e.Errors()
	require.True(t, ok)
	assert.Equal(t, scripterr.New(scripterr.CodeGeneric, "boom", scripterr.WithRange(2, 5)), again)

	failure, ok := e.Outcome().(platform.Failure)
	require.True(t, ok)
	assert.Equal(t, again, failure.Record)
}

func TestExecuteEmptyScript(t *testing.T) {
	t.Parallel()

	rt := new(mocks.Runtime)
	e := newExecutor(t, rt)

	for _, script := range []string{"", "   ", "\n\t"} {
		require.ErrorIs(t, e.Execute(context.Background(), script), platform.ErrEmptyScript)
	}
	assert.Equal(t, platform.StateUninitialized, e.State())
	rt.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestExecuteRuntimeUnavailable(t *testing.T) {
	t.Parallel()

	unavailable := fmt.Errorf("%w: osascript not found", platform.ErrRuntimeUnavailable)
	rt := new(mocks.Runtime)
	rt.On("Run", mock.Anything, "x").Return(nil, unavailable).Once()
	rt.On("Run", mock.Anything, "x").Return(value.Boolean(true), nil).Once()

	e := newExecutor(t, rt)

	err := e.Execute(context.Background(), "x")
	require.ErrorIs(t, err, platform.ErrRuntimeUnavailable)
	assert.Equal(t, platform.StateUninitialized, e.State())
	assert.Nil(t, e.Outcome())
	_, ok := e.Errors()
	assert.False(t, ok, "unavailability must not be recorded as a script error")

	// the executor may be retried once the runtime is reachable
	require.NoError(t, e.Execute(context.Background(), "x"))
	v, ok := e.Result()
	require.True(t, ok)
	assert.Equal(t, value.Boolean(true), v)
}

type panickingRuntime struct{}

func (panickingRuntime) Run(context.Context, string) (value.Value, error) {
	panic("kaboom")
}

func TestExecuteRecoversRuntimePanic(t *testing.T) {
	t.Parallel()

	e := newExecutor(t, panickingRuntime{})
	require.NoError(t, e.Execute(context.Background(), "x"))

	rec, ok := e.Errors()
	require.True(t, ok)
	assert.Equal(t, scripterr.CodeUnknown, rec.Code)
	assert.Contains(t, rec.Message, "kaboom")
}

func TestPanickingObserver(t *testing.T) {
	t.Parallel()

	rt := new(mocks.Runtime)
	rt.On("Run", mock.Anything, "x").Return(value.Integer(7), nil).Once()

	var finished atomic.Int32
	e := newExecutor(t, rt,
		platform.WithObserver(func(platform.Event) { panic("observer failed") }),
		platform.WithObserver(func(ev platform.Event) {
			if ev.Type == platform.EventFinished {
				finished.Add(1)
			}
		}),
	)
	require.NoError(t, e.Execute(context.Background(), "x"))

	assert.Equal(t, platform.StateSucceeded, e.State())
	assert.Equal(t, int32(1), finished.Load())
	v, ok := e.Result()
	require.True(t, ok)
	assert.Equal(t, value.Integer(7), v)
}

func TestObservers(t *testing.T) {
	t.Parallel()

	rt := new(mocks.Runtime)
	rt.On("Run", mock.Anything, "x").Return(value.Integer(1), nil)

	var events []platform.Event
	e := newExecutor(t, rt, platform.WithObserver(func(ev platform.Event) {
		events = append(events, ev)
	}))
	require.NoError(t, e.Execute(context.Background(), "x"))

	require.Len(t, events, 2)
	assert.Equal(t, platform.EventStarted, events[0].Type)
	assert.Equal(t, e.ID(), events[0].ExecutorID)
	assert.Nil(t, events[0].Outcome)

	assert.Equal(t, platform.EventFinished, events[1].Type)
	assert.Equal(t, "x", events[1].Script)
	assert.Equal(t, platform.Success{Value: value.Integer(1)}, events[1].Outcome)
	assert.NoError(t, events[1].Err)

	_, err := platform.New(rt, platform.WithObserver(nil))
	require.Error(t, err)
}

// echoRuntime returns its script as text and fails the test if two calls overlap.
type echoRuntime struct {
	t        *testing.T
	inFlight atomic.Int32
	calls    atomic.Int32
}

func (r *echoRuntime) Run(_ context.Context, script string) (value.Value, error) {
	if n := r.inFlight.Add(1); n != 1 {
		r.t.Errorf("runtime entered concurrently: %d calls in flight", n)
	}
	defer r.inFlight.Add(-1)
	r.calls.Add(1)
	time.Sleep(time.Millisecond)
	return value.Text(script), nil
}

func TestExecutorsSerializeUnsafeRuntime(t *testing.T) {
	t.Parallel()

	const n = 32
	rt := &echoRuntime{t: t}

	executors := make([]*platform.Executor, n)
	for i := range executors {
		executors[i] = newExecutor(t, rt)
	}

	var wg sync.WaitGroup
	for i, e := range executors {
		wg.Go(func() {
			assert.NoError(t, e.Execute(context.Background(), fmt.Sprintf("script %d", i)))
		})
	}
	wg.Wait()

	assert.Equal(t, int32(n), rt.calls.Load())
	for i, e := range executors {
		v, ok := e.Result()
		require.True(t, ok)
		assert.Equal(t, value.Text(fmt.Sprintf("script %d", i)), v)
	}
}

// rendezvousRuntime succeeds only when two calls are in flight at once.
type rendezvousRuntime struct {
	arrived chan struct{}
}

func (r *rendezvousRuntime) ConcurrencySafe() bool { return true }

func (r *rendezvousRuntime) Run(ctx context.Context, _ string) (value.Value, error) {
	select {
	case r.arrived <- struct{}{}:
	case <-r.arrived:
	case <-time.After(5 * time.Second):
		return nil, errors.New("calls were serialized")
	}
	return value.Boolean(true), nil
}

func TestConcurrencySafeRuntimeIsNotSerialized(t *testing.T) {
	t.Parallel()

	rt := &rendezvousRuntime{arrived: make(chan struct{})}
	a := newExecutor(t, rt)
	b := newExecutor(t, rt)

	var wg sync.WaitGroup
	for _, e := range []*platform.Executor{a, b} {
		wg.Go(func() {
			assert.NoError(t, e.Execute(context.Background(), "x"))
		})
	}
	wg.Wait()

	for _, e := range []*platform.Executor{a, b} {
		v, ok := e.Result()
		require.True(t, ok)
		assert.Equal(t, value.Boolean(true), v)
	}
}

func TestConcurrentExecuteOnOneExecutor(t *testing.T) {
	t.Parallel()

	rt := new(mocks.ConcurrentRuntime)
	rt.On("Run", mock.Anything, "x").Return(value.Integer(7), nil)
	e := newExecutor(t, rt)

	const n = 16
	var wg sync.WaitGroup
	var won, lost atomic.Int32
	for range n {
		wg.Go(func() {
			err := e.Execute(context.Background(), "x")
			switch {
			case err == nil:
				won.Add(1)
			case errors.Is(err, platform.ErrAlreadyExecuted):
				lost.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), won.Load())
	assert.Equal(t, int32(n-1), lost.Load())
	rt.AssertNumberOfCalls(t, "Run", 1)
}

func TestStateString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "uninitialized", platform.StateUninitialized.String())
	assert.Equal(t, "running", platform.StateRunning.String())
	assert.Equal(t, "succeeded", platform.StateSucceeded.String())
	assert.Equal(t, "failed", platform.StateFailed.String())
	assert.Equal(t, "started", platform.EventStarted.String())
}
