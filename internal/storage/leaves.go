package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateLeaveRequest files a new leave request in pending status.
func (s *SQLiteStorage) CreateLeaveRequest(ctx context.Context, req *LeaveRequest) (*LeaveRequest, error) {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO leave_requests (user_id, start_date, end_date, type, reason, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		req.UserID, req.StartDate, req.EndDate, req.Type, req.Reason, LeaveStatusPending, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create leave request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	created := *req
	created.ID = id
	created.Status = LeaveStatusPending
	created.CreatedAt = now
	return &created, nil
}

// GetLeaveRequest retrieves a leave request by ID.
// Returns ErrNotFound if the request doesn't exist.
func (s *SQLiteStorage) GetLeaveRequest(ctx context.Context, id int64) (*LeaveRequest, error) {
	var lr LeaveRequest
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, start_date, end_date, type, reason, status, created_at FROM leave_requests WHERE id = ?",
		id).
		Scan(&lr.ID, &lr.UserID, &lr.StartDate, &lr.EndDate, &lr.Type, &lr.Reason, &lr.Status, &lr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get leave request: %w", err)
	}
	return &lr, nil
}

// UpdateLeaveRequest replaces the date range, type and reason of a request.
// Only pending requests may be edited. Returns ErrConflict if the request
// has already been decided, ErrNotFound if it doesn't exist.
func (s *SQLiteStorage) UpdateLeaveRequest(ctx context.Context, req *LeaveRequest) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE leave_requests SET start_date = ?, end_date = ?, type = ?, reason = ? WHERE id = ? AND status = ?",
		req.StartDate, req.EndDate, req.Type, req.Reason, req.ID, LeaveStatusPending)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, err := s.GetLeaveRequest(ctx, req.ID); err != nil {
			return err
		}
		return ErrConflict
	}

	return nil
}

// SetLeaveRequestStatus decides a pending request. The status guard in the
// WHERE clause makes the pending -> approved/rejected transition atomic:
// two concurrent decisions cannot both apply.
// Returns ErrConflict if the request was already decided, ErrNotFound if it
// doesn't exist.
func (s *SQLiteStorage) SetLeaveRequestStatus(ctx context.Context, id int64, status string) error {
	if status != LeaveStatusApproved && status != LeaveStatusRejected {
		return fmt.Errorf("invalid leave request status: %q", status)
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE leave_requests SET status = ? WHERE id = ? AND status = ?",
		status, id, LeaveStatusPending)
	if err != nil {
		return fmt.Errorf("failed to set leave request status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, err := s.GetLeaveRequest(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}

	return nil
}

// LeaveRequestFilter narrows ListLeaveRequests results. Zero values are ignored.
type LeaveRequestFilter struct {
	UserID int64
	Status string
}

// ListLeaveRequests returns leave requests matching the filter,
// most recent first. Returns empty slice if nothing matches.
func (s *SQLiteStorage) ListLeaveRequests(ctx context.Context, filter LeaveRequestFilter) ([]*LeaveRequest, error) {
	query := "SELECT id, user_id, start_date, end_date, type, reason, status, created_at FROM leave_requests"
	var clauses []string
	var args []any

	if filter.UserID != 0 {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}

	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var requests []*LeaveRequest
	for rows.Next() {
		var lr LeaveRequest
		if err := rows.Scan(&lr.ID, &lr.UserID, &lr.StartDate, &lr.EndDate, &lr.Type, &lr.Reason, &lr.Status, &lr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leave request row: %w", err)
		}
		requests = append(requests, &lr)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leave requests: %w", err)
	}

	if requests == nil {
		requests = make([]*LeaveRequest, 0)
	}

	return requests, nil
}
