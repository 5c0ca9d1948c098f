package tracking

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "config missing", err: ErrConfigMissing, want: "config_missing"},
		{name: "bad credentials", err: ErrBadCredentials, want: "bad_credentials"},
		{name: "transport failed", err: ErrTransportFailed, want: "transport_failed"},
		{name: "platform unavailable", err: ErrPlatformUnavailable, want: "platform_unavailable"},
		{name: "rate limited", err: ErrRateLimited, want: "rate_limited"},
		{name: "rate limited with hint", err: NewRateLimitError(5 * time.Second), want: "rate_limited"},
		{name: "order not found", err: ErrOrderNotFound, want: "order_not_found"},
		{name: "already fulfilled", err: ErrAlreadyFulfilled, want: "already_fulfilled"},
		{name: "nothing to do", err: ErrNothingToDo, want: "nothing_to_do"},
		{name: "validation failed", err: ErrValidationFailed, want: "validation_failed"},
		{name: "wrapped sentinel", err: fmt.Errorf("gmail: %w", ErrBadCredentials), want: "bad_credentials"},
		{name: "unknown error", err: errors.New("boom"), want: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError(2 * time.Second)

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Contains(t, err.Error(), "retry after 2s")

	hint, ok := RetryAfterHint(fmt.Errorf("shopify: %w", err))
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, hint)

	_, ok = RetryAfterHint(ErrRateLimited)
	assert.False(t, ok)

	assert.Equal(t, ErrRateLimited.Error(), NewRateLimitError(0).Error())
}
