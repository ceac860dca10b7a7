package resilience

import (
	"time"

	"github.com/daretide/daretide-backend/internal/apperrors"
)

// Policy bounds a retried remote operation: how many attempts, how the
// inter-attempt delay grows, and which failures are worth retrying.
type Policy struct {
	Name              string
	MaxAttempts       int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	JitterFraction    float64
	ShouldRetry       func(error) bool
}

// API is the default policy for store calls: retry transient failures
// (no response, 5xx-equivalent, timeout) with 1s/2s/4s... backoff.
var API = Policy{
	Name:              "api",
	MaxAttempts:       3,
	BaseDelay:         time.Second,
	MaxDelay:          10 * time.Second,
	BackoffMultiplier: 2,
	JitterFraction:    0.10,
	ShouldRetry:       retryTransient,
}

// Upload covers file-bearing submissions. Large bodies make repeated
// attempts expensive, so only one retry and only on transient failures.
var Upload = Policy{
	Name:              "upload",
	MaxAttempts:       2,
	BaseDelay:         time.Second,
	MaxDelay:          10 * time.Second,
	BackoffMultiplier: 2,
	JitterFraction:    0.10,
	ShouldRetry:       retryTransient,
}

// Critical drives lifecycle state transitions. Short base delay, more
// attempts, and retries everything that is not deterministically doomed.
var Critical = Policy{
	Name:              "critical",
	MaxAttempts:       5,
	BaseDelay:         250 * time.Millisecond,
	MaxDelay:          10 * time.Second,
	BackoffMultiplier: 2,
	JitterFraction:    0.10,
	ShouldRetry:       retryUnlessDeterministic,
}

// NonCritical never retries.
var NonCritical = Policy{
	Name:        "non_critical",
	MaxAttempts: 1,
	ShouldRetry: func(error) bool { return false },
}

func retryTransient(err error) bool {
	return apperrors.Retryable(err)
}

// retryUnlessDeterministic refuses to retry failures whose outcome
// cannot change on a second attempt: auth, validation, conflicts and
// illegal transitions.
func retryUnlessDeterministic(err error) bool {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeUnauthenticated,
		apperrors.CodeForbidden,
		apperrors.CodeValidation,
		apperrors.CodeEmptyProof,
		apperrors.CodeRateLimited,
		apperrors.CodeNotFound,
		apperrors.CodeSlotLimit,
		apperrors.CodeCooldownActive,
		apperrors.CodeGameFull,
		apperrors.CodeInvalidTransition:
		return false
	}
	return true
}
