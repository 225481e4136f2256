package provider

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common provider failures.
var (
	ErrContextLengthExceeded = errors.New("context length exceeded")
	ErrContentBlocked        = errors.New("content blocked by safety filters")
	ErrRateLimit             = errors.New("rate limit exceeded")
	ErrAuthentication        = errors.New("authentication failed")
	ErrServiceUnavailable    = errors.New("service unavailable")
	ErrEmptyResponse         = errors.New("empty response")
)

// ErrorCode represents a provider error code.
type ErrorCode string

const (
	ErrorCodeContextLength  ErrorCode = "context_length_exceeded"
	ErrorCodeContentBlocked ErrorCode = "content_blocked"
	ErrorCodeRateLimit      ErrorCode = "rate_limit"
	ErrorCodeAuth           ErrorCode = "authentication_failed"
	ErrorCodePermission     ErrorCode = "permission_denied"
	ErrorCodeNetwork        ErrorCode = "network_error"
	ErrorCodeTimeout        ErrorCode = "timeout"
	ErrorCodeUnavailable    ErrorCode = "service_unavailable"
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"
	ErrorCodeEmptyResponse  ErrorCode = "empty_response"
)

// ProviderError wraps upstream failures with a code and retry hint.
type ProviderError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Retryable  bool
	RetryAfter *time.Duration
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// Is matches the sentinel for the error's code.
func (e *ProviderError) Is(target error) bool {
	switch e.Code {
	case ErrorCodeContextLength:
		return target == ErrContextLengthExceeded
	case ErrorCodeContentBlocked:
		return target == ErrContentBlocked
	case ErrorCodeRateLimit:
		return target == ErrRateLimit
	case ErrorCodeAuth, ErrorCodePermission:
		return target == ErrAuthentication
	case ErrorCodeUnavailable:
		return target == ErrServiceUnavailable
	case ErrorCodeEmptyResponse:
		return target == ErrEmptyResponse
	}
	return false
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	return false
}

// GetRetryAfter returns the retry-after duration if present.
func GetRetryAfter(err error) *time.Duration {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.RetryAfter
	}
	return nil
}
