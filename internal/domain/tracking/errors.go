package tracking

import (
	"errors"
	"fmt"
	"time"
)

// Closed error taxonomy. Adapters map provider-specific failures onto these
// sentinels before crossing a layer boundary; the reconciler never invents
// new kinds.
var (
	// Fatal, no retry.
	ErrConfigMissing  = errors.New("tracking: configuration missing")
	ErrBadCredentials = errors.New("tracking: credentials rejected")

	// Transient, retryable by the caller.
	ErrTransportFailed     = errors.New("tracking: transport failed")
	ErrPlatformUnavailable = errors.New("tracking: commerce platform unavailable")
	ErrRateLimited         = errors.New("tracking: rate limited")

	// Normal business outcomes.
	ErrOrderNotFound    = errors.New("tracking: order not found")
	ErrAlreadyFulfilled = errors.New("tracking: order already fulfilled")
	ErrNothingToDo      = errors.New("tracking: nothing to undo")

	// Caller-side precondition failure.
	ErrValidationFailed = errors.New("tracking: validation failed")
)

// RateLimitError wraps ErrRateLimited with the provider's retry-after hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("tracking: rate limited, retry after %s", e.RetryAfter)
	}
	return ErrRateLimited.Error()
}

// Unwrap makes errors.Is(err, ErrRateLimited) hold for RateLimitError values.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// NewRateLimitError builds a RateLimitError from a retry-after hint.
func NewRateLimitError(retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{RetryAfter: retryAfter}
}

// RetryAfterHint extracts the retry-after hint from an error chain, if any.
func RetryAfterHint(err error) (time.Duration, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter, true
	}
	return 0, false
}

// ErrorKind returns the taxonomy name for an error, used in batch reports and
// HTTP error bodies.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfigMissing):
		return "config_missing"
	case errors.Is(err, ErrBadCredentials):
		return "bad_credentials"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrPlatformUnavailable):
		return "platform_unavailable"
	case errors.Is(err, ErrTransportFailed):
		return "transport_failed"
	case errors.Is(err, ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, ErrAlreadyFulfilled):
		return "already_fulfilled"
	case errors.Is(err, ErrNothingToDo):
		return "nothing_to_do"
	case errors.Is(err, ErrValidationFailed):
		return "validation_failed"
	default:
		return "internal"
	}
}
