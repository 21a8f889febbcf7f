// Package checkin implements the QR check-in core: the token registry with
// its single-active-token invariant and the scan dispatcher that turns a
// token, user and action into an attendance stamp.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/presenzahq/presenza/internal/storage"
)

// MaxDescriptionLen bounds the free-text description on generated tokens.
const MaxDescriptionLen = 255

// TokenStatus is the derived lifecycle state of a QR token.
type TokenStatus string

const (
	// TokenActive means the token is eligible for scanning.
	TokenActive TokenStatus = "active"
	// TokenExpired means the active flag is still set but expiry has passed.
	TokenExpired TokenStatus = "expired"
	// TokenDeactivated means the token was superseded or deactivated by an admin.
	TokenDeactivated TokenStatus = "deactivated"
)

// StatusOf derives a token's status at the given instant. Deactivation wins
// over expiry; expiry wins over the active flag. Every consumer applies this
// same rule so the client and server never disagree on what "active" means.
func StatusOf(t *storage.QRToken, now time.Time) TokenStatus {
	if !t.IsActive {
		return TokenDeactivated
	}
	if t.ExpiresAt != nil && t.ExpiresAt.Before(now) {
		return TokenExpired
	}
	return TokenActive
}

// TokenStore is the storage surface the registry needs.
type TokenStore interface {
	CreateQRToken(ctx context.Context, token, description string, expiresAt *time.Time, createdBy int64) (*storage.QRToken, error)
	GetActiveQRToken(ctx context.Context) (*storage.QRToken, error)
	DeactivateQRToken(ctx context.Context, id int64) error
	ListQRTokens(ctx context.Context) ([]*storage.QRToken, error)
}

// AnnotatedToken pairs a stored token with its derived status.
type AnnotatedToken struct {
	*storage.QRToken
	Status TokenStatus
}

// Registry manages QR token generation and lifecycle.
type Registry struct {
	store TokenStore
	now   func() time.Time
}

// NewRegistry creates a registry backed by a token store.
func NewRegistry(store TokenStore) *Registry {
	return &Registry{store: store, now: time.Now}
}

// SetClock overrides the registry clock. Intended for tests.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

// Generate creates a new token and supersedes any previously active one.
// The swap happens in a single storage transaction, so two concurrent calls
// cannot both leave a token active. expiresHours <= 0 means no expiry.
func (r *Registry) Generate(ctx context.Context, description string, expiresHours int, createdBy int64) (*storage.QRToken, error) {
	if len(description) > MaxDescriptionLen {
		return nil, fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLen)
	}

	var expiresAt *time.Time
	if expiresHours > 0 {
		exp := r.now().UTC().Add(time.Duration(expiresHours) * time.Hour)
		expiresAt = &exp
	}

	token, err := r.store.CreateQRToken(ctx, uuid.NewString(), description, expiresAt, createdBy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, nil
}

// Active returns the current active, non-expired token, or nil if no token
// is active or the only active one has expired.
func (r *Registry) Active(ctx context.Context) (*storage.QRToken, error) {
	token, err := r.store.GetActiveQRToken(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active token: %w", err)
	}

	if StatusOf(token, r.now()) != TokenActive {
		return nil, nil
	}

	return token, nil
}

// Deactivate sets active=false on a token. Idempotent: deactivating an
// already-inactive token is a no-op success.
func (r *Registry) Deactivate(ctx context.Context, id int64) error {
	return r.store.DeactivateQRToken(ctx, id)
}

// History returns all tokens ever created, most recent first, each
// annotated with its derived status. Expired and deactivated tokens remain
// in history; they are merely inert for scanning.
func (r *Registry) History(ctx context.Context) ([]*AnnotatedToken, error) {
	tokens, err := r.store.ListQRTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	now := r.now()
	annotated := make([]*AnnotatedToken, len(tokens))
	for i, t := range tokens {
		annotated[i] = &AnnotatedToken{QRToken: t, Status: StatusOf(t, now)}
	}

	return annotated, nil
}
