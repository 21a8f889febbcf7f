package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/presenzahq/presenza/internal/attendance"
	"github.com/presenzahq/presenza/internal/storage"
)

// ScanStore is the storage surface the dispatcher needs.
type ScanStore interface {
	GetQRTokenByString(ctx context.Context, token string) (*storage.QRToken, error)
	GetUserByID(ctx context.Context, id int64) (*storage.User, error)
	GetAttendance(ctx context.Context, userID int64, date string) (*storage.AttendanceRecord, error)
	CreateAttendance(ctx context.Context, userID int64, date string, punchIn time.Time) (*storage.AttendanceRecord, error)
	StampAttendance(ctx context.Context, id int64, field string, ts time.Time, version int64) error
}

// ScanResult is the outcome of a successful scan.
type ScanResult struct {
	Action    attendance.Action
	Timestamp time.Time
	UserName  string
	Status    attendance.Status // derived status after the stamp
}

// Dispatcher validates scan requests against the token registry and the
// attendance state machine, and applies the resulting stamp.
type Dispatcher struct {
	store ScanStore
	now   func() time.Time
}

// NewDispatcher creates a dispatcher backed by a scan store.
func NewDispatcher(store ScanStore) *Dispatcher {
	return &Dispatcher{store: store, now: time.Now}
}

// SetClock overrides the dispatcher clock. Intended for tests.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Scan resolves a token + user + action into an attendance stamp.
//
// Order of checks: token existence, token status, then action legality
// against the user's current derived status for today. The stamp itself is
// a single atomic step - an insert guarded by the (user, date) unique
// constraint for punch-in, a version-checked update for everything else -
// so two concurrent scans for the same user cannot both apply; the loser
// surfaces as storage.ErrConflict or storage.ErrDuplicate.
func (d *Dispatcher) Scan(ctx context.Context, token string, userID int64, action attendance.Action) (*ScanResult, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token required", ErrValidation)
	}
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user_id required", ErrValidation)
	}

	tok, err := d.store.GetQRTokenByString(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	now := d.now().UTC()
	switch StatusOf(tok, now) {
	case TokenDeactivated:
		return nil, ErrTokenInactive
	case TokenExpired:
		return nil, ErrTokenExpired
	}

	return d.Apply(ctx, userID, action)
}

// Apply validates an action against the user's current attendance state and
// stamps it. This is the token-less path shared by Scan and the
// authenticated punch endpoints; the state machine is enforced here, on the
// server, regardless of what the client believes its status is.
func (d *Dispatcher) Apply(ctx context.Context, userID int64, action attendance.Action) (*ScanResult, error) {
	user, err := d.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	now := d.now().UTC()
	date := now.Format("2006-01-02")
	rec, err := d.store.GetAttendance(ctx, userID, date)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}

	current := attendance.Derive(rec)
	if !attendance.Allowed(current, action) {
		return nil, &IllegalTransitionError{Current: current, Attempted: action}
	}

	if action == attendance.ActionPunchIn {
		if rec, err = d.store.CreateAttendance(ctx, userID, date, now); err != nil {
			return nil, fmt.Errorf("failed to record punch-in: %w", err)
		}
	} else {
		if err := d.store.StampAttendance(ctx, rec.ID, attendance.FieldFor(action), now, rec.Version); err != nil {
			return nil, fmt.Errorf("failed to record %s: %w", action, err)
		}
	}

	return &ScanResult{
		Action:    action,
		Timestamp: now,
		UserName:  user.FullName,
		Status:    statusAfter(action),
	}, nil
}

// statusAfter is the status a record lands in once the given legal action
// has been stamped.
func statusAfter(action attendance.Action) attendance.Status {
	switch action {
	case attendance.ActionPunchIn, attendance.ActionBreakEnd:
		return attendance.StatusPresent
	case attendance.ActionBreakStart:
		return attendance.StatusOnBreak
	default:
		return attendance.StatusCompleted
	}
}
