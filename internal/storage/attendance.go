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

// Attendance timestamp field names accepted by StampAttendance.
const (
	FieldPunchIn    = "punch_in"
	FieldBreakStart = "break_start"
	FieldBreakEnd   = "break_end"
	FieldPunchOut   = "punch_out"
)

// GetAttendance returns the attendance record for one user on one day.
// Returns ErrNotFound if no record exists yet.
func (s *SQLiteStorage) GetAttendance(ctx context.Context, userID int64, date string) (*AttendanceRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, date, punch_in, break_start, break_end, punch_out, notes, version, created_at FROM attendance WHERE user_id = ? AND date = ?",
		userID, date)

	rec, err := scanAttendanceFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return rec, nil
}

// CreateAttendance inserts the day's record with the punch-in timestamp set.
// The UNIQUE(user_id, date) constraint makes "first action of the day
// creates the record" atomic: a concurrent insert for the same user and day
// fails with ErrDuplicate instead of racing a separate existence check.
func (s *SQLiteStorage) CreateAttendance(ctx context.Context, userID int64, date string, punchIn time.Time) (*AttendanceRecord, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO attendance (user_id, date, punch_in, created_at) VALUES (?, ?, ?, ?)",
		userID, date, punchIn, time.Now().UTC())
	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) {
			if sqliteErr.Code() == 2067 || (sqliteErr.Code()&0xFF) == sqlite3.SQLITE_CONSTRAINT {
				return nil, ErrDuplicate
			}
		}
		return nil, fmt.Errorf("failed to create attendance: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	pi := punchIn
	return &AttendanceRecord{
		ID:      id,
		UserID:  userID,
		Date:    date,
		PunchIn: &pi,
	}, nil
}

// StampAttendance sets one timestamp field on an existing record using an
// optimistic version check. If the record was modified since it was read,
// no row matches and ErrConflict is returned; the caller must re-read and
// re-validate. The field must be one of the Field* constants.
func (s *SQLiteStorage) StampAttendance(ctx context.Context, id int64, field string, ts time.Time, version int64) error {
	var set string
	switch field {
	case FieldPunchIn, FieldBreakEnd, FieldPunchOut:
		set = field + " = ?"
	case FieldBreakStart:
		// Starting a new break opens a fresh cycle: the previous cycle's
		// break_end must be cleared or the record would still read as
		// off-break.
		set = "break_start = ?, break_end = NULL"
	default:
		return fmt.Errorf("invalid attendance field: %q", field)
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE attendance SET "+set+", version = version + 1 WHERE id = ? AND version = ?",
		ts, id, version)
	if err != nil {
		return fmt.Errorf("failed to stamp attendance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrConflict
	}

	return nil
}

// UpdateAttendanceNotes replaces the free-text notes on a record.
// Returns ErrNotFound if the record doesn't exist.
func (s *SQLiteStorage) UpdateAttendanceNotes(ctx context.Context, id int64, notes string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE attendance SET notes = ? WHERE id = ?", notes, id)
	if err != nil {
		return fmt.Errorf("failed to update attendance notes: %w", err)
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

// AttendanceFilter narrows ListAttendance results. Zero values are ignored.
type AttendanceFilter struct {
	UserID    int64
	StartDate string
	EndDate   string
}

// ListAttendance returns attendance records matching the filter,
// most recent day first. Returns empty slice if nothing matches.
func (s *SQLiteStorage) ListAttendance(ctx context.Context, filter AttendanceFilter) ([]*AttendanceRecord, error) {
	query := "SELECT id, user_id, date, punch_in, break_start, break_end, punch_out, notes, version, created_at FROM attendance"
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
	query += " ORDER BY date DESC, user_id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var records []*AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendanceFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance: %w", err)
	}

	if records == nil {
		records = make([]*AttendanceRecord, 0)
	}

	return records, nil
}

func scanAttendanceFrom(sc rowScanner) (*AttendanceRecord, error) {
	var rec AttendanceRecord
	var punchIn, breakStart, breakEnd, punchOut sql.NullTime
	if err := sc.Scan(&rec.ID, &rec.UserID, &rec.Date, &punchIn, &breakStart, &breakEnd, &punchOut, &rec.Notes, &rec.Version, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.PunchIn = nullTimePtr(punchIn)
	rec.BreakStart = nullTimePtr(breakStart)
	rec.BreakEnd = nullTimePtr(breakEnd)
	rec.PunchOut = nullTimePtr(punchOut)
	return &rec, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
