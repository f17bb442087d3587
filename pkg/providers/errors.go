package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Predefined errors
var (
	// ErrNoAPIKey means no credential was configured anywhere.
	ErrNoAPIKey = errors.New("API key not configured")

	// ErrEmptyResponse means the model returned no choices or empty text.
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrTimeout marks a call that hit its deadline.
	ErrTimeout = errors.New("request timeout")

	// ErrRateLimited marks a rate-limit rejection.
	ErrRateLimited = errors.New("rate limited")
)

// Error is a classified provider failure.
type Error struct {
	Code    string
	Message string
	Cause   error
	Retry   bool
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether retrying the call may succeed.
func (e *Error) IsRetryable() bool {
	return e.Retry
}

// NewError creates a non-retryable provider error.
func NewError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// NewRetryableError creates a retryable provider error.
func NewRetryableError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Retry: true}
}

// Error code constants
const (
	ErrCodeConfig    = "CONFIG_ERROR"
	ErrCodeNetwork   = "NETWORK_ERROR"
	ErrCodeTimeout   = "TIMEOUT_ERROR"
	ErrCodeRateLimit = "RATE_LIMIT_ERROR"
	ErrCodeAPI       = "API_ERROR"
	ErrCodeResponse  = "RESPONSE_ERROR"
	ErrCodeUnknown   = "UNKNOWN_ERROR"
)

// WrapError classifies err into a provider Error, preserving an existing
// classification when there is one.
func WrapError(err error, code, message string) *Error {
	if err == nil {
		return nil
	}

	var pe *Error
	if errors.As(err, &pe) {
		pe.Message = message + ": " + pe.Message
		return pe
	}

	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
		Retry:   IsTransient(err),
	}
}

// IsTransient reports whether the error looks like a transient network or
// service failure worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retry
	}

	switch {
	case errors.Is(err, ErrTimeout),
		errors.Is(err, ErrRateLimited),
		errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.Is(err, context.Canceled):
		return false
	}

	errStr := err.Error()
	retryablePatterns := []string{
		"timeout",
		"deadline exceeded",
		"connection refused",
		"temporary failure",
		"rate limit",
		"429",
		"500",
		"502",
		"503",
		"504",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
		"i/o timeout",
		"EOF",
	}

	for _, pattern := range retryablePatterns {
		if containsFold(errStr, pattern) {
			return true
		}
	}

	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
