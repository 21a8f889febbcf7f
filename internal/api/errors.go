package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/presenzahq/presenza/internal/checkin"
	"github.com/presenzahq/presenza/internal/storage"
)

// Standard error codes for API responses.
const (
	// ErrCodeInvalidRequest indicates a malformed request body.
	ErrCodeInvalidRequest = "invalid_request"

	// ErrCodeValidation indicates a request that parsed but failed validation.
	ErrCodeValidation = "validation_error"

	// ErrCodeInvalidCredentials indicates a bad login or missing session.
	ErrCodeInvalidCredentials = "invalid_credentials"

	// ErrCodeAdminRequired indicates an admin session is required.
	ErrCodeAdminRequired = "admin_required"

	// ErrCodeInvalidToken indicates the scanned token matches no known token.
	ErrCodeInvalidToken = "invalid_token"

	// ErrCodeTokenInactive indicates the token has been deactivated.
	ErrCodeTokenInactive = "token_inactive"

	// ErrCodeTokenExpired indicates the token is past its expiry.
	ErrCodeTokenExpired = "token_expired"

	// ErrCodeIllegalTransition indicates the action is not legal from the
	// user's current attendance status.
	ErrCodeIllegalTransition = "illegal_transition"

	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound = "not_found"

	// ErrCodeConflict indicates a concurrent modification lost a race.
	ErrCodeConflict = "conflict"

	// ErrCodeInternalError indicates a server error.
	ErrCodeInternalError = "internal_error"
)

// APIError is the standard error response format for JSON APIs.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// WriteError writes a JSON error response with the given status code, error code, and message.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteErrorWithHint(w, status, code, message, "")
}

// WriteErrorWithHint writes a JSON error response with an optional hint for resolving the error.
func WriteErrorWithHint(w http.ResponseWriter, status int, code, message, hint string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := APIError{
		Error:   code,
		Message: message,
		Hint:    hint,
	}
	// Headers are already sent; nothing to do about encoding errors
	_ = json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

// writeScanError maps the check-in error taxonomy onto HTTP responses.
// Every failure carries a human-readable message so the UI can explain the
// refusal and return to an actionable state.
func (h *Handler) writeScanError(w http.ResponseWriter, err error) string {
	var illegal *checkin.IllegalTransitionError

	switch {
	case errors.Is(err, checkin.ErrInvalidToken):
		WriteError(w, http.StatusUnauthorized, ErrCodeInvalidToken,
			"QR code not recognized. Scan or enter a current code.")
		return ErrCodeInvalidToken
	case errors.Is(err, checkin.ErrTokenInactive):
		WriteError(w, http.StatusForbidden, ErrCodeTokenInactive,
			"This QR code has been deactivated. Ask an administrator for the current one.")
		return ErrCodeTokenInactive
	case errors.Is(err, checkin.ErrTokenExpired):
		WriteError(w, http.StatusForbidden, ErrCodeTokenExpired,
			"This QR code has expired. Ask an administrator to generate a new one.")
		return ErrCodeTokenExpired
	case errors.Is(err, checkin.ErrUnknownUser):
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, "User not found.")
		return ErrCodeNotFound
	case errors.Is(err, checkin.ErrValidation):
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return ErrCodeValidation
	case errors.As(err, &illegal):
		WriteError(w, http.StatusConflict, ErrCodeIllegalTransition, illegal.Error())
		return ErrCodeIllegalTransition
	case errors.Is(err, storage.ErrConflict), errors.Is(err, storage.ErrDuplicate):
		WriteError(w, http.StatusConflict, ErrCodeConflict,
			"Another update for this record was applied first. Check your status and retry.")
		return ErrCodeConflict
	default:
		h.logger.Error("scan failed", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return ErrCodeInternalError
	}
}
