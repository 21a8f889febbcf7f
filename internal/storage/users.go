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

// CreateUser creates a new user with a pre-hashed password.
// Returns ErrDuplicate if the username is taken.
func (s *SQLiteStorage) CreateUser(ctx context.Context, username, passwordHash, fullName, role string) (*User, error) {
	if role == "" {
		role = "employee"
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, full_name, role, created_at) VALUES (?, ?, ?, ?, ?)",
		username, passwordHash, fullName, role, now)
	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) {
			if sqliteErr.Code() == 2067 || (sqliteErr.Code()&0xFF) == sqlite3.SQLITE_CONSTRAINT {
				return nil, ErrDuplicate
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	return &User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         role,
		CreatedAt:    now,
	}, nil
}

// GetUserByID retrieves a user by ID.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStorage) GetUserByID(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, full_name, role, created_at FROM users WHERE id = ?",
		id)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by username.
// This is used during login. Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStorage) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, full_name, role, created_at FROM users WHERE username = ?",
		username)
	return scanUser(row)
}

// ListUsers returns all users ordered by username.
// Returns empty slice if no users exist.
func (s *SQLiteStorage) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, username, password_hash, full_name, role, created_at FROM users ORDER BY username ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var users []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, &u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	if users == nil {
		users = make([]*User, 0)
	}

	return users, nil
}

// UpdateUser updates a user's full name and role.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStorage) UpdateUser(ctx context.Context, id int64, fullName, role string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET full_name = ?, role = ? WHERE id = ?",
		fullName, role, id)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}
