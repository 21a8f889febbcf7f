package storage

import "time"

// User represents a registered employee or administrator.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	FullName     string
	Role         string // "employee" or "admin"
	CreatedAt    time.Time
}

// QRToken represents one generated QR credential.
// At most one QRToken has IsActive=true at any time; CreateQRToken
// deactivates the previous active token in the same transaction.
type QRToken struct {
	ID          int64
	Token       string
	Description string
	CreatedAt   time.Time
	ExpiresAt   *time.Time // nil means no expiry
	IsActive    bool
	CreatedBy   int64
}

// AttendanceRecord holds one user's punch and break timestamps for one
// calendar day. Date is stored as "2006-01-02". Version increments on
// every stamp and guards concurrent updates.
type AttendanceRecord struct {
	ID         int64
	UserID     int64
	Date       string
	PunchIn    *time.Time
	BreakStart *time.Time
	BreakEnd   *time.Time
	PunchOut   *time.Time
	Notes      string
	Version    int64
	CreatedAt  time.Time
}

// Shift represents one scheduled work shift.
type Shift struct {
	ID        int64
	UserID    int64
	Date      string // "2006-01-02"
	StartTime string // "15:04"
	EndTime   string // "15:04"
	Notes     string
	CreatedAt time.Time
}

// LeaveRequest represents a request for time off.
type LeaveRequest struct {
	ID        int64
	UserID    int64
	StartDate string // "2006-01-02"
	EndDate   string // "2006-01-02"
	Type      string // "vacation", "sick", "personal"
	Reason    string
	Status    string // "pending", "approved", "rejected"
	CreatedAt time.Time
}

// Leave request status values.
const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)
