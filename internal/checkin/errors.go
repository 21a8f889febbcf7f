package checkin

import (
	"errors"
	"fmt"

	"github.com/presenzahq/presenza/internal/attendance"
)

var (
	// ErrInvalidToken indicates the scanned string matches no known token.
	ErrInvalidToken = errors.New("checkin: invalid token")

	// ErrTokenInactive indicates the token was found but has been deactivated.
	ErrTokenInactive = errors.New("checkin: token deactivated")

	// ErrTokenExpired indicates the token was found but is past its expiry.
	ErrTokenExpired = errors.New("checkin: token expired")

	// ErrUnknownUser indicates the scan named a user that doesn't exist.
	ErrUnknownUser = errors.New("checkin: unknown user")

	// ErrValidation indicates a malformed request (missing fields,
	// over-length description, bad action value).
	ErrValidation = errors.New("checkin: validation failed")
)

// IllegalTransitionError reports a scan action that is not legal from the
// user's current attendance status. It carries both so the UI can explain
// the refusal ("you are already on break").
type IllegalTransitionError struct {
	Current   attendance.Status
	Attempted attendance.Action
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("checkin: action %s not allowed from status %s", e.Attempted, e.Current)
}
