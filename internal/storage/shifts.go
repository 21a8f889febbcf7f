package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateShift schedules a new shift.
func (s *SQLiteStorage) CreateShift(ctx context.Context, shift *Shift) (*Shift, error) {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO shifts (user_id, date, start_time, end_time, notes, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		shift.UserID, shift.Date, shift.StartTime, shift.EndTime, shift.Notes, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create shift: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	created := *shift
	created.ID = id
	created.CreatedAt = now
	return &created, nil
}

// GetShift retrieves a shift by ID.
// Returns ErrNotFound if the shift doesn't exist.
func (s *SQLiteStorage) GetShift(ctx context.Context, id int64) (*Shift, error) {
	var sh Shift
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, date, start_time, end_time, notes, created_at FROM shifts WHERE id = ?",
		id).
		Scan(&sh.ID, &sh.UserID, &sh.Date, &sh.StartTime, &sh.EndTime, &sh.Notes, &sh.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	return &sh, nil
}

// UpdateShift replaces a shift's schedule fields.
// Returns ErrNotFound if the shift doesn't exist.
func (s *SQLiteStorage) UpdateShift(ctx context.Context, shift *Shift) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE shifts SET user_id = ?, date = ?, start_time = ?, end_time = ?, notes = ? WHERE id = ?",
		shift.UserID, shift.Date, shift.StartTime, shift.EndTime, shift.Notes, shift.ID)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
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

// DeleteShift removes a shift.
// Returns ErrNotFound if the shift doesn't exist.
func (s *SQLiteStorage) DeleteShift(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM shifts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
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

// ShiftFilter narrows ListShifts results. Zero values are ignored.
type ShiftFilter struct {
	UserID    int64
	StartDate string
	EndDate   string
}

// ListShifts returns shifts matching the filter, soonest first.
// Returns empty slice if nothing matches.
func (s *SQLiteStorage) ListShifts(ctx context.Context, filter ShiftFilter) ([]*Shift, error) {
	query := "SELECT id, user_id, date, start_time, end_time, notes, created_at FROM shifts"
	var clauses []string
	var args []any

	if filter.UserID != 0 {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.StartDate != "" {
		clauses = append(clauses, "date >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		clauses = append(clauses, "date <= ?")
		args = append(args, filter.EndDate)
	}

	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY date ASC, start_time ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var shifts []*Shift
	for rows.Next() {
		var sh Shift
		if err := rows.Scan(&sh.ID, &sh.UserID, &sh.Date, &sh.StartTime, &sh.EndTime, &sh.Notes, &sh.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shift row: %w", err)
		}
		shifts = append(shifts, &sh)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	if shifts == nil {
		shifts = make([]*Shift, 0)
	}

	return shifts, nil
}
