package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/daretide/daretide-backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRecording returns an executor whose backoff is recorded instead of
// slept, with jitter pinned to a fixed value.
func newRecording(policy Policy, jitter float64) (*Executor, *[]time.Duration) {
	var delays []time.Duration
	e := New(policy)
	e.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	e.jitter = func() float64 { return jitter }
	return e, &delays
}

func TestRunSucceedsFirstAttempt(t *testing.T) {
	e, delays := newRecording(API, 0)

	calls := 0
	err := e.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *delays)
}

func TestRunRetriesTransientThenSucceeds(t *testing.T) {
	e, delays := newRecording(API, 0)

	calls := 0
	err := e.Run(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return apperrors.New(apperrors.CodeUnavailable, "store unreachable")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, *delays, 2)
	assert.Equal(t, 1*time.Second, (*delays)[0])
	assert.Equal(t, 2*time.Second, (*delays)[1])
}

func TestRunJitterBounds(t *testing.T) {
	// With maximum positive jitter the second delay is base*2*1.10.
	e, delays := newRecording(API, 1)

	calls := 0
	_ = e.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return apperrors.New(apperrors.CodeUnavailable, "store unreachable")
	})

	require.Len(t, *delays, 2)
	assert.Equal(t, 1100*time.Millisecond, (*delays)[0])
	assert.Equal(t, 2200*time.Millisecond, (*delays)[1])

	e, delays = newRecording(API, -1)
	_ = e.Run(context.Background(), func(ctx context.Context) error {
		return apperrors.New(apperrors.CodeUnavailable, "store unreachable")
	})
	require.Len(t, *delays, 2)
	assert.Equal(t, 900*time.Millisecond, (*delays)[0])
	assert.Equal(t, 1800*time.Millisecond, (*delays)[1])
}

func TestRunDelayCap(t *testing.T) {
	e, delays := newRecording(Critical, 0)

	_ = e.Run(context.Background(), func(ctx context.Context) error {
		return apperrors.New(apperrors.CodeUnavailable, "store unreachable")
	})

	// 250ms, 500ms, 1s, 2s across the four backoffs, all under the cap.
	require.Len(t, *delays, 4)
	assert.Equal(t, 250*time.Millisecond, (*delays)[0])
	assert.Equal(t, 2*time.Second, (*delays)[3])
	for _, d := range *delays {
		assert.LessOrEqual(t, d, Critical.MaxDelay)
	}
}

func TestRunNonRetryableShortCircuits(t *testing.T) {
	e, delays := newRecording(API, 0)

	calls := 0
	cause := apperrors.Forbidden("not yours")
	err := e.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return cause
	})

	// Returned unmodified, first occurrence, no backoff consumed.
	assert.Equal(t, 1, calls)
	assert.Empty(t, *delays)
	assert.Equal(t, cause, err)
}

func TestRunExhaustionWrapsOperationFailed(t *testing.T) {
	e, _ := newRecording(API, 0)

	cause := apperrors.New(apperrors.CodeTimeout, "deadline exceeded")
	calls := 0
	err := e.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return cause
	})

	assert.Equal(t, API.MaxAttempts, calls)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeOperationFailed, apperrors.CodeOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestRunNonCriticalSingleAttempt(t *testing.T) {
	e, delays := newRecording(NonCritical, 0)

	calls := 0
	err := e.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return apperrors.New(apperrors.CodeUnavailable, "store unreachable")
	})

	assert.Equal(t, 1, calls)
	assert.Empty(t, *delays)
	require.Error(t, err)
}

func TestRunContextCancelledBeforeStart(t *testing.T) {
	e, _ := newRecording(API, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := e.Run(ctx, func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.Equal(t, 0, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunContextCancelledDuringBackoff(t *testing.T) {
	e := New(API)
	e.jitter = func() float64 { return 0 }

	ctx, cancel := context.WithCancel(context.Background())
	e.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	calls := 0
	err := e.Run(ctx, func(ctx context.Context) error {
		calls++
		return apperrors.New(apperrors.CodeUnavailable, "store unreachable")
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleepContextHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := sleepContext(ctx, 5*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDoReturnsValue(t *testing.T) {
	e, _ := newRecording(API, 0)

	got, err := Do(context.Background(), e, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = Do(context.Background(), e, func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeOperationFailed, apperrors.CodeOf(err))
}

func TestPolicyMaxAttempts(t *testing.T) {
	assert.Equal(t, 3, API.MaxAttempts)
	assert.Equal(t, 2, Upload.MaxAttempts)
	assert.Equal(t, 5, Critical.MaxAttempts)
	assert.Equal(t, 1, NonCritical.MaxAttempts)
}

func TestRetryUnlessDeterministic(t *testing.T) {
	deterministic := []error{
		apperrors.Forbidden("no"),
		apperrors.Validation("bad"),
		apperrors.New(apperrors.CodeSlotLimit, "full"),
		apperrors.New(apperrors.CodeCooldownActive, "wait"),
		apperrors.New(apperrors.CodeGameFull, "taken"),
		apperrors.InvalidTransition("completed", "accept"),
	}
	for _, err := range deterministic {
		assert.False(t, retryUnlessDeterministic(err), "%v should not retry", err)
	}

	assert.True(t, retryUnlessDeterministic(apperrors.New(apperrors.CodeUnavailable, "down")))
	assert.True(t, retryUnlessDeterministic(errors.New("driver fault")))
}
