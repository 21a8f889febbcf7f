package client

import (
	"encoding/json"
	"fmt"
)

// Error codes mirrored from the server's error envelope, plus CodeNetwork
// for transport failures.
const (
	CodeInvalidToken      = "invalid_token"
	CodeTokenInactive     = "token_inactive"
	CodeTokenExpired      = "token_expired"
	CodeIllegalTransition = "illegal_transition"
	CodeValidation        = "validation_error"
	CodeConflict          = "conflict"
	CodeNotFound          = "not_found"
	CodeNetwork           = "network_error"
)

// Error is an API failure surfaced to the UI as a single human-readable
// message. No failure is fatal: the caller returns to an actionable state
// and may retry by user action.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	retryable  bool
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Retryable reports whether retrying the same request could succeed.
// Only transport-level failures are retryable; token and transition
// failures need a different token or a different action.
func (e *Error) Retryable() bool {
	return e.retryable
}

// parseError decodes the server's {error, message} envelope into an Error.
func parseError(statusCode int, body []byte) *Error {
	apiErr := &Error{StatusCode: statusCode, retryable: statusCode >= 500}

	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		apiErr.Code = envelope.Error
		apiErr.Message = envelope.Message
	} else {
		apiErr.Message = string(body)
	}

	return apiErr
}
