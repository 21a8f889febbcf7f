package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// CreateQRToken creates a new QR token and deactivates any previously
// active token in the same transaction. This is the single-writer critical
// section enforcing the at-most-one-active-token invariant: two concurrent
// calls serialize on the transaction and exactly one token ends active.
// Returns ErrDuplicate if a token with this string already exists.
func (s *SQLiteStorage) CreateQRToken(ctx context.Context, token, description string, expiresAt *time.Time, createdBy int64) (*QRToken, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"UPDATE qr_tokens SET is_active = FALSE WHERE is_active = TRUE"); err != nil {
		return nil, fmt.Errorf("failed to deactivate prior token: %w", err)
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		"INSERT INTO qr_tokens (token, description, created_at, expires_at, is_active, created_by) VALUES (?, ?, ?, ?, TRUE, ?)",
		token, description, now, timePtrArg(expiresAt), createdBy)
	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) {
			if sqliteErr.Code() == 2067 || (sqliteErr.Code()&0xFF) == sqlite3.SQLITE_CONSTRAINT {
				return nil, ErrDuplicate
			}
		}
		return nil, fmt.Errorf("failed to create qr token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit qr token: %w", err)
	}

	return &QRToken{
		ID:          id,
		Token:       token,
		Description: description,
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
		IsActive:    true,
		CreatedBy:   createdBy,
	}, nil
}

// GetActiveQRToken returns the token currently flagged active.
// Returns ErrNotFound if no token is flagged active. Expiry is not
// evaluated here; callers derive status from the returned token.
func (s *SQLiteStorage) GetActiveQRToken(ctx context.Context) (*QRToken, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, token, description, created_at, expires_at, is_active, created_by FROM qr_tokens WHERE is_active = TRUE")
	return scanQRToken(row)
}

// GetQRTokenByString retrieves a token by its opaque token string.
// Returns ErrNotFound if the string matches no token.
func (s *SQLiteStorage) GetQRTokenByString(ctx context.Context, token string) (*QRToken, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, token, description, created_at, expires_at, is_active, created_by FROM qr_tokens WHERE token = ?",
		token)
	return scanQRToken(row)
}

// GetQRTokenByID retrieves a token by ID.
// Returns ErrNotFound if the token doesn't exist.
func (s *SQLiteStorage) GetQRTokenByID(ctx context.Context, id int64) (*QRToken, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, token, description, created_at, expires_at, is_active, created_by FROM qr_tokens WHERE id = ?",
		id)
	return scanQRToken(row)
}

// DeactivateQRToken sets is_active=false on the specified token.
// Idempotent: deactivating an already-inactive token succeeds.
// Returns ErrNotFound only if no token with this ID exists.
func (s *SQLiteStorage) DeactivateQRToken(ctx context.Context, id int64) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM qr_tokens WHERE id = ?", id).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up qr token: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE qr_tokens SET is_active = FALSE WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to deactivate qr token: %w", err)
	}

	return nil
}

// ListQRTokens returns all tokens ever created, most recent first.
// Returns empty slice if no tokens exist.
func (s *SQLiteStorage) ListQRTokens(ctx context.Context) ([]*QRToken, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, token, description, created_at, expires_at, is_active, created_by FROM qr_tokens ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query qr tokens: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var tokens []*QRToken
	for rows.Next() {
		t, err := scanQRTokenRow(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating qr tokens: %w", err)
	}

	if tokens == nil {
		tokens = make([]*QRToken, 0)
	}

	return tokens, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanQRToken(row *sql.Row) (*QRToken, error) {
	t, err := scanQRTokenFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func scanQRTokenRow(rows *sql.Rows) (*QRToken, error) {
	t, err := scanQRTokenFrom(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan qr token row: %w", err)
	}
	return t, nil
}

func scanQRTokenFrom(sc rowScanner) (*QRToken, error) {
	var t QRToken
	var expiresAt sql.NullTime
	if err := sc.Scan(&t.ID, &t.Token, &t.Description, &t.CreatedAt, &expiresAt, &t.IsActive, &t.CreatedBy); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		exp := expiresAt.Time
		t.ExpiresAt = &exp
	}
	return &t, nil
}

// timePtrArg converts a *time.Time into a driver-friendly argument,
// mapping nil to SQL NULL.
func timePtrArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
