package twink

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error type.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota

	// ErrorTransportUnavailable means the live channel is not in the Open
	// state. Never user-visible: it routes a send to the fallback path.
	ErrorTransportUnavailable

	// ErrorTransportOpenFailed means the live channel could not be
	// established. The session continues in fallback-only mode.
	ErrorTransportOpenFailed

	// ErrorHistoryFetchFailed means the history fetch failed. The room opens
	// with an empty timeline.
	ErrorHistoryFetchFailed

	// ErrorDeliveryFailed means both the live channel and the fallback
	// failed to deliver. Callers must not auto-retry; the fallback gives no
	// idempotence guarantee.
	ErrorDeliveryFailed

	// ErrorSerialization means an inbound frame could not be decoded.
	ErrorSerialization

	// ErrorInvalidConfig means the client configuration is unusable.
	ErrorInvalidConfig
)

// String returns the string representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorTransportUnavailable:
		return "transport_unavailable"
	case ErrorTransportOpenFailed:
		return "transport_open_failed"
	case ErrorHistoryFetchFailed:
		return "history_fetch_failed"
	case ErrorDeliveryFailed:
		return "delivery_failed"
	case ErrorSerialization:
		return "serialization_error"
	case ErrorInvalidConfig:
		return "invalid_config"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

// ChatError is a structured error with code and context.
type ChatError struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *ChatError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s (wrapped: %v)", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Unwrap support.
func (e *ChatError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface for error comparison.
func (e *ChatError) Is(target error) bool {
	t, ok := target.(*ChatError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new ChatError with the given code and message.
func NewError(code ErrorCode, message string) *ChatError {
	return &ChatError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with a ChatError.
func WrapError(code ErrorCode, message string, err error) *ChatError {
	return &ChatError{
		Code:    code,
		Message: message,
		Wrapped: err,
	}
}

// CodeOf extracts the ErrorCode from an error chain, or ErrorUnknown.
func CodeOf(err error) ErrorCode {
	var ce *ChatError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrorUnknown
}

// IsTransportError checks if an error is a live-channel availability error.
func IsTransportError(err error) bool {
	code := CodeOf(err)
	return code == ErrorTransportUnavailable || code == ErrorTransportOpenFailed
}
