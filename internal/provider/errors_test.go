package provider

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProviderError_Error(t *testing.T) {
	err := &ProviderError{Code: ErrorCodeRateLimit, Message: "rate limit exceeded"}
	assert.Equal(t, "rate_limit: rate limit exceeded", err.Error())

	wrapped := &ProviderError{Code: ErrorCodeNetwork, Message: "network error", Underlying: errors.New("dial tcp")}
	assert.Equal(t, "network_error: network error (dial tcp)", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "dial tcp")
}

func TestProviderError_IsSentinel(t *testing.T) {
	tests := []struct {
		name   string
		code   ErrorCode
		target error
		want   bool
	}{
		{"rate limit", ErrorCodeRateLimit, ErrRateLimit, true},
		{"permission counts as auth", ErrorCodePermission, ErrAuthentication, true},
		{"blocked", ErrorCodeContentBlocked, ErrContentBlocked, true},
		{"context length", ErrorCodeContextLength, ErrContextLengthExceeded, true},
		{"mismatch", ErrorCodeNetwork, ErrRateLimit, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("generate: %w", &ProviderError{Code: tt.code})
			assert.Equal(t, tt.want, errors.Is(err, tt.target))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", &ProviderError{Retryable: true})))
	assert.False(t, IsRetryable(&ProviderError{Retryable: false}))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestGetRetryAfter(t *testing.T) {
	d := 30 * time.Second
	got := GetRetryAfter(&ProviderError{Code: ErrorCodeRateLimit, RetryAfter: &d})
	if assert.NotNil(t, got) {
		assert.Equal(t, d, *got)
	}
	assert.Nil(t, GetRetryAfter(errors.New("plain")))
}
