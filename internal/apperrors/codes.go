package apperrors

// Code identifies the class of a failure. Handlers map codes to HTTP
// statuses; the resilience layer uses them to decide whether a retry
// can possibly help.
type Code string

const (
	CodeUnknown           Code = "UNKNOWN"
	CodeValidation        Code = "VALIDATION_FAILED"
	CodeEmptyProof        Code = "EMPTY_PROOF"
	CodeNotFound          Code = "NOT_FOUND"
	CodeForbidden         Code = "FORBIDDEN"
	CodeUnauthenticated   Code = "UNAUTHENTICATED"
	CodeSlotLimit         Code = "SLOT_LIMIT"
	CodeCooldownActive    Code = "COOLDOWN_ACTIVE"
	CodeGameFull          Code = "GAME_FULL"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeRateLimited       Code = "RATE_LIMITED"
	CodeOperationFailed   Code = "OPERATION_FAILED"
	CodeUnavailable       Code = "UNAVAILABLE"
	CodeTimeout           Code = "TIMEOUT"
	CodeInternal          Code = "INTERNAL"
)

// transientCodes are failures where a retry can plausibly succeed.
// Everything else (auth, validation, conflicts, invalid transitions)
// is deterministic and must never be retried.
var transientCodes = map[Code]bool{
	CodeUnknown:         true,
	CodeUnavailable:     true,
	CodeTimeout:         true,
	CodeInternal:        true,
	CodeOperationFailed: true,
}

// Transient reports whether a failure with this code may be retried.
func (c Code) Transient() bool {
	return transientCodes[c]
}
