package resilience

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/daretide/daretide-backend/internal/apperrors"
)

// Executor runs operations under a retry Policy. The zero value is not
// usable; construct with New.
type Executor struct {
	policy Policy

	// sleep and jitter are injection points for tests. sleep must
	// return early with ctx.Err() when the context is cancelled so an
	// abandoned backoff timer never outlives its owner.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() float64
}

func New(policy Policy) *Executor {
	return &Executor{
		policy: policy,
		sleep:  sleepContext,
		jitter: func() float64 { return rand.Float64()*2 - 1 },
	}
}

// Run executes op under the executor's policy. Non-retryable errors are
// returned unmodified on the first occurrence without consuming further
// attempts. A retryable failure that survives all attempts is wrapped
// as OPERATION_FAILED with the last error as cause.
func (e *Executor) Run(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if e.policy.ShouldRetry != nil && !e.policy.ShouldRetry(lastErr) {
			return lastErr
		}
		if attempt == e.policy.MaxAttempts {
			break
		}

		delay := e.delayFor(attempt)
		slog.Debug("operation failed, backing off",
			"policy", e.policy.Name, "attempt", attempt, "delay", delay, "error", lastErr)
		if err := e.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return apperrors.Wrap(apperrors.CodeOperationFailed, "operation failed after retries", lastErr)
}

// Do is the generic form of Run for operations that return a value.
func Do[T any](ctx context.Context, e *Executor, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := e.Run(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// delayFor computes the backoff before attempt+1: capped exponential
// growth perturbed by up to ±JitterFraction.
func (e *Executor) delayFor(attempt int) time.Duration {
	base := float64(e.policy.BaseDelay) * math.Pow(e.policy.BackoffMultiplier, float64(attempt-1))
	capped := math.Min(base, float64(e.policy.MaxDelay))
	jittered := capped * (1 + e.policy.JitterFraction*e.jitter())
	if jittered < 0 {
		jittered = 0
	}
	return time.Duration(jittered)
}

// sleepContext waits for d or until ctx is cancelled, whichever comes
// first. The timer is always stopped.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
