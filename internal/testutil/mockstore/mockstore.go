// Package mockstore provides a configurable mock implementation of the
// storage interfaces for testing.
//
// The MockStorage type uses function fields for each method, allowing
// tests to customize behavior as needed while providing sensible defaults
// for methods that aren't customized.
package mockstore

import (
	"context"
	"time"

	"github.com/presenzahq/presenza/internal/storage"
)

// MockStorage is a configurable mock implementation of api.Storage.
// Each method can be customized by setting the corresponding function
// field. If a function field is nil, the method returns a sensible
// default value.
type MockStorage struct {
	// QR token operations
	CreateQRTokenFunc      func(ctx context.Context, token, description string, expiresAt *time.Time, createdBy int64) (*storage.QRToken, error)
	GetActiveQRTokenFunc   func(ctx context.Context) (*storage.QRToken, error)
	GetQRTokenByStringFunc func(ctx context.Context, token string) (*storage.QRToken, error)
	DeactivateQRTokenFunc  func(ctx context.Context, id int64) error
	ListQRTokensFunc       func(ctx context.Context) ([]*storage.QRToken, error)

	// User operations
	CreateUserFunc        func(ctx context.Context, username, passwordHash, fullName, role string) (*storage.User, error)
	GetUserByIDFunc       func(ctx context.Context, id int64) (*storage.User, error)
	GetUserByUsernameFunc func(ctx context.Context, username string) (*storage.User, error)
	ListUsersFunc         func(ctx context.Context) ([]*storage.User, error)
	UpdateUserFunc        func(ctx context.Context, id int64, fullName, role string) error

	// Attendance operations
	GetAttendanceFunc    func(ctx context.Context, userID int64, date string) (*storage.AttendanceRecord, error)
	CreateAttendanceFunc func(ctx context.Context, userID int64, date string, punchIn time.Time) (*storage.AttendanceRecord, error)
	StampAttendanceFunc  func(ctx context.Context, id int64, field string, ts time.Time, version int64) error
	ListAttendanceFunc   func(ctx context.Context, filter storage.AttendanceFilter) ([]*storage.AttendanceRecord, error)

	// Shift operations
	CreateShiftFunc func(ctx context.Context, shift *storage.Shift) (*storage.Shift, error)
	GetShiftFunc    func(ctx context.Context, id int64) (*storage.Shift, error)
	UpdateShiftFunc func(ctx context.Context, shift *storage.Shift) error
	DeleteShiftFunc func(ctx context.Context, id int64) error
	ListShiftsFunc  func(ctx context.Context, filter storage.ShiftFilter) ([]*storage.Shift, error)

	// Leave request operations
	CreateLeaveRequestFunc    func(ctx context.Context, req *storage.LeaveRequest) (*storage.LeaveRequest, error)
	GetLeaveRequestFunc       func(ctx context.Context, id int64) (*storage.LeaveRequest, error)
	UpdateLeaveRequestFunc    func(ctx context.Context, req *storage.LeaveRequest) error
	SetLeaveRequestStatusFunc func(ctx context.Context, id int64, status string) error
	ListLeaveRequestsFunc     func(ctx context.Context, filter storage.LeaveRequestFilter) ([]*storage.LeaveRequest, error)

	// Lifecycle
	PingFunc func(ctx context.Context) error
}

// CreateQRToken stores a new check-in token.
func (m *MockStorage) CreateQRToken(ctx context.Context, token, description string, expiresAt *time.Time, createdBy int64) (*storage.QRToken, error) {
	if m.CreateQRTokenFunc != nil {
		return m.CreateQRTokenFunc(ctx, token, description, expiresAt, createdBy)
	}
	return &storage.QRToken{
		ID:          1,
		Token:       token,
		Description: description,
		IsActive:    true,
		ExpiresAt:   expiresAt,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
	}, nil
}

// GetActiveQRToken returns the currently active token.
func (m *MockStorage) GetActiveQRToken(ctx context.Context) (*storage.QRToken, error) {
	if m.GetActiveQRTokenFunc != nil {
		return m.GetActiveQRTokenFunc(ctx)
	}
	return nil, storage.ErrNotFound
}

// GetQRTokenByString looks a token up by its string value.
func (m *MockStorage) GetQRTokenByString(ctx context.Context, token string) (*storage.QRToken, error) {
	if m.GetQRTokenByStringFunc != nil {
		return m.GetQRTokenByStringFunc(ctx, token)
	}
	return nil, storage.ErrNotFound
}

// DeactivateQRToken marks a token inactive.
func (m *MockStorage) DeactivateQRToken(ctx context.Context, id int64) error {
	if m.DeactivateQRTokenFunc != nil {
		return m.DeactivateQRTokenFunc(ctx, id)
	}
	return nil
}

// ListQRTokens returns all tokens, newest first.
func (m *MockStorage) ListQRTokens(ctx context.Context) ([]*storage.QRToken, error) {
	if m.ListQRTokensFunc != nil {
		return m.ListQRTokensFunc(ctx)
	}
	return []*storage.QRToken{}, nil
}

// CreateUser stores a new user account.
func (m *MockStorage) CreateUser(ctx context.Context, username, passwordHash, fullName, role string) (*storage.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, username, passwordHash, fullName, role)
	}
	return &storage.User{
		ID:           1,
		Username:     username,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         role,
		CreatedAt:    time.Now(),
	}, nil
}

// GetUserByID retrieves a user by ID.
func (m *MockStorage) GetUserByID(ctx context.Context, id int64) (*storage.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(ctx, id)
	}
	return nil, storage.ErrNotFound
}

// GetUserByUsername retrieves a user by username.
func (m *MockStorage) GetUserByUsername(ctx context.Context, username string) (*storage.User, error) {
	if m.GetUserByUsernameFunc != nil {
		return m.GetUserByUsernameFunc(ctx, username)
	}
	return nil, storage.ErrNotFound
}

// ListUsers returns all users.
func (m *MockStorage) ListUsers(ctx context.Context) ([]*storage.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	return []*storage.User{}, nil
}

// UpdateUser updates a user's profile fields.
func (m *MockStorage) UpdateUser(ctx context.Context, id int64, fullName, role string) error {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, id, fullName, role)
	}
	return nil
}

// GetAttendance returns one user's record for a date.
func (m *MockStorage) GetAttendance(ctx context.Context, userID int64, date string) (*storage.AttendanceRecord, error) {
	if m.GetAttendanceFunc != nil {
		return m.GetAttendanceFunc(ctx, userID, date)
	}
	return nil, storage.ErrNotFound
}

// CreateAttendance inserts a fresh record with the punch-in stamp set.
func (m *MockStorage) CreateAttendance(ctx context.Context, userID int64, date string, punchIn time.Time) (*storage.AttendanceRecord, error) {
	if m.CreateAttendanceFunc != nil {
		return m.CreateAttendanceFunc(ctx, userID, date, punchIn)
	}
	return &storage.AttendanceRecord{
		ID:      1,
		UserID:  userID,
		Date:    date,
		PunchIn: &punchIn,
	}, nil
}

// StampAttendance sets one timestamp field on an existing record.
func (m *MockStorage) StampAttendance(ctx context.Context, id int64, field string, ts time.Time, version int64) error {
	if m.StampAttendanceFunc != nil {
		return m.StampAttendanceFunc(ctx, id, field, ts, version)
	}
	return nil
}

// ListAttendance returns records matching the filter.
func (m *MockStorage) ListAttendance(ctx context.Context, filter storage.AttendanceFilter) ([]*storage.AttendanceRecord, error) {
	if m.ListAttendanceFunc != nil {
		return m.ListAttendanceFunc(ctx, filter)
	}
	return []*storage.AttendanceRecord{}, nil
}

// CreateShift stores a new shift assignment.
func (m *MockStorage) CreateShift(ctx context.Context, shift *storage.Shift) (*storage.Shift, error) {
	if m.CreateShiftFunc != nil {
		return m.CreateShiftFunc(ctx, shift)
	}
	created := *shift
	created.ID = 1
	return &created, nil
}

// GetShift retrieves a shift by ID.
func (m *MockStorage) GetShift(ctx context.Context, id int64) (*storage.Shift, error) {
	if m.GetShiftFunc != nil {
		return m.GetShiftFunc(ctx, id)
	}
	return nil, storage.ErrNotFound
}

// UpdateShift replaces a shift's fields.
func (m *MockStorage) UpdateShift(ctx context.Context, shift *storage.Shift) error {
	if m.UpdateShiftFunc != nil {
		return m.UpdateShiftFunc(ctx, shift)
	}
	return nil
}

// DeleteShift removes a shift.
func (m *MockStorage) DeleteShift(ctx context.Context, id int64) error {
	if m.DeleteShiftFunc != nil {
		return m.DeleteShiftFunc(ctx, id)
	}
	return nil
}

// ListShifts returns shifts matching the filter.
func (m *MockStorage) ListShifts(ctx context.Context, filter storage.ShiftFilter) ([]*storage.Shift, error) {
	if m.ListShiftsFunc != nil {
		return m.ListShiftsFunc(ctx, filter)
	}
	return []*storage.Shift{}, nil
}

// CreateLeaveRequest stores a new pending leave request.
func (m *MockStorage) CreateLeaveRequest(ctx context.Context, req *storage.LeaveRequest) (*storage.LeaveRequest, error) {
	if m.CreateLeaveRequestFunc != nil {
		return m.CreateLeaveRequestFunc(ctx, req)
	}
	created := *req
	created.ID = 1
	created.Status = storage.LeaveStatusPending
	return &created, nil
}

// GetLeaveRequest retrieves a leave request by ID.
func (m *MockStorage) GetLeaveRequest(ctx context.Context, id int64) (*storage.LeaveRequest, error) {
	if m.GetLeaveRequestFunc != nil {
		return m.GetLeaveRequestFunc(ctx, id)
	}
	return nil, storage.ErrNotFound
}

// UpdateLeaveRequest replaces a pending request's fields.
func (m *MockStorage) UpdateLeaveRequest(ctx context.Context, req *storage.LeaveRequest) error {
	if m.UpdateLeaveRequestFunc != nil {
		return m.UpdateLeaveRequestFunc(ctx, req)
	}
	return nil
}

// SetLeaveRequestStatus decides a pending request.
func (m *MockStorage) SetLeaveRequestStatus(ctx context.Context, id int64, status string) error {
	if m.SetLeaveRequestStatusFunc != nil {
		return m.SetLeaveRequestStatusFunc(ctx, id, status)
	}
	return nil
}

// ListLeaveRequests returns requests matching the filter.
func (m *MockStorage) ListLeaveRequests(ctx context.Context, filter storage.LeaveRequestFilter) ([]*storage.LeaveRequest, error) {
	if m.ListLeaveRequestsFunc != nil {
		return m.ListLeaveRequestsFunc(ctx, filter)
	}
	return []*storage.LeaveRequest{}, nil
}

// Ping checks storage health.
func (m *MockStorage) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
