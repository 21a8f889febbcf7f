// Package api provides the HTTP surface of the Presenza server.
package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/presenzahq/presenza/internal/auth"
	"github.com/presenzahq/presenza/internal/checkin"
	"github.com/presenzahq/presenza/internal/storage"
)

// Storage is the persistence surface the API handlers need.
type Storage interface {
	checkin.TokenStore
	checkin.ScanStore

	// Health check
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, username, passwordHash, fullName, role string) (*storage.User, error)
	GetUserByUsername(ctx context.Context, username string) (*storage.User, error)
	ListUsers(ctx context.Context) ([]*storage.User, error)
	UpdateUser(ctx context.Context, id int64, fullName, role string) error

	// Attendance
	ListAttendance(ctx context.Context, filter storage.AttendanceFilter) ([]*storage.AttendanceRecord, error)

	// Shifts
	CreateShift(ctx context.Context, shift *storage.Shift) (*storage.Shift, error)
	GetShift(ctx context.Context, id int64) (*storage.Shift, error)
	UpdateShift(ctx context.Context, shift *storage.Shift) error
	DeleteShift(ctx context.Context, id int64) error
	ListShifts(ctx context.Context, filter storage.ShiftFilter) ([]*storage.Shift, error)

	// Leave requests
	CreateLeaveRequest(ctx context.Context, req *storage.LeaveRequest) (*storage.LeaveRequest, error)
	GetLeaveRequest(ctx context.Context, id int64) (*storage.LeaveRequest, error)
	UpdateLeaveRequest(ctx context.Context, req *storage.LeaveRequest) error
	SetLeaveRequestStatus(ctx context.Context, id int64, status string) error
	ListLeaveRequests(ctx context.Context, filter storage.LeaveRequestFilter) ([]*storage.LeaveRequest, error)
}

// Handler holds the dependencies shared by all API endpoints.
type Handler struct {
	storage    Storage
	registry   *checkin.Registry
	dispatcher *checkin.Dispatcher
	auth       *auth.Service
	logger     *slog.Logger
	logLevel   *slog.LevelVar
	now        func() time.Time
}

// NewHandler creates an API handler.
func NewHandler(store Storage, authSvc *auth.Service, logLevel *slog.LevelVar, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if logLevel == nil {
		logLevel = new(slog.LevelVar)
	}

	return &Handler{
		storage:    store,
		registry:   checkin.NewRegistry(store),
		dispatcher: checkin.NewDispatcher(store),
		auth:       authSvc,
		logger:     logger,
		logLevel:   logLevel,
		now:        time.Now,
	}
}

// SetClock overrides the handler clock, propagating to the registry and
// dispatcher. Intended for tests.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
	h.registry.SetClock(now)
	h.dispatcher.SetClock(now)
}
