package client

// LoginResult is the response from a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// User is a user profile as returned by the API.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// QRCode is a QR token as returned by the API.
type QRCode struct {
	ID          int64  `json:"id"`
	Token       string `json:"token"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	ExpiresAt   string `json:"expires_at,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedBy   int64  `json:"created_by"`
	Status      string `json:"status,omitempty"`
}

// ScanResult is the response from a successful scan.
type ScanResult struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Status    string `json:"status"`
}

// ActionResult is the response from an authenticated attendance action.
type ActionResult struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

// Attendance is one day's attendance record as returned by the API.
type Attendance struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Date       string `json:"date"`
	PunchIn    string `json:"punch_in,omitempty"`
	BreakStart string `json:"break_start,omitempty"`
	BreakEnd   string `json:"break_end,omitempty"`
	PunchOut   string `json:"punch_out,omitempty"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
}

// TodayStatus is the session user's derived status for today.
type TodayStatus struct {
	Date       string      `json:"date"`
	Status     string      `json:"status"`
	Attendance *Attendance `json:"attendance"`
}

// Shift is a scheduled shift as returned by the API.
type Shift struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes,omitempty"`
}
