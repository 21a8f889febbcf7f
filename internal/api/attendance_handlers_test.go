package api

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"
)

// TestAttendanceActions verifies the authenticated punch endpoints run
// through the same state machine as scans.
func TestAttendanceActions(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	_, token := ts.createUser("att-worker", "employee")

	steps := []struct {
		path   string
		status string
	}{
		{"/api/attendance/punch-in", "present"},
		{"/api/attendance/break-start", "on_break"},
		{"/api/attendance/break-end", "present"},
		{"/api/attendance/punch-out", "completed"},
	}
	for _, step := range steps {
		rec := ts.request(http.MethodPost, step.path, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d (body %s)", step.path, rec.Code, rec.Body.String())
		}
		var resp map[string]string
		ts.decode(rec, &resp)
		if resp["status"] != step.status {
			t.Errorf("%s status = %q, want %q", step.path, resp["status"], step.status)
		}
	}

	// The day is complete; everything is now illegal
	rec := ts.request(http.MethodPost, "/api/attendance/punch-in", token, nil)
	ts.wantError(rec, http.StatusConflict, ErrCodeIllegalTransition)
}

// TestAttendanceDoublePunchIn verifies the canonical double punch-in
// refusal.
func TestAttendanceDoublePunchIn(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	_, token := ts.createUser("att-double", "employee")

	rec := ts.request(http.MethodPost, "/api/attendance/punch-in", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("punch-in status = %d", rec.Code)
	}
	rec = ts.request(http.MethodPost, "/api/attendance/punch-in", token, nil)
	ts.wantError(rec, http.StatusConflict, ErrCodeIllegalTransition)
}

// TestTodayStatus verifies the derived status endpoint before and after
// punching in.
func TestTodayStatus(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	_, token := ts.createUser("att-today", "employee")

	rec := ts.request(http.MethodGet, "/api/attendance/today-status", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("today-status status = %d", rec.Code)
	}
	var body struct {
		Date       string              `json:"date"`
		Status     string              `json:"status"`
		Attendance *AttendanceResponse `json:"attendance"`
	}
	ts.decode(rec, &body)
	if body.Status != "not_started" {
		t.Errorf("status = %q, want not_started", body.Status)
	}
	if body.Attendance != nil {
		t.Errorf("expected null attendance, got %+v", body.Attendance)
	}

	if rec := ts.request(http.MethodPost, "/api/attendance/punch-in", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("punch-in status = %d", rec.Code)
	}

	rec = ts.request(http.MethodGet, "/api/attendance/today-status", token, nil)
	ts.decode(rec, &body)
	if body.Status != "present" {
		t.Errorf("status = %q, want present", body.Status)
	}
	if body.Attendance == nil || body.Attendance.PunchIn == "" {
		t.Errorf("expected attendance with punch_in, got %+v", body.Attendance)
	}
}

// TestMyAttendance verifies the personal history listing.
func TestMyAttendance(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	worker, token := ts.createUser("att-mine", "employee")
	other, _ := ts.createUser("att-other", "employee")

	if rec := ts.request(http.MethodPost, "/api/attendance/punch-in", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("punch-in status = %d", rec.Code)
	}
	// Another user's record must not leak into my listing
	if _, err := ts.store.CreateAttendance(context.Background(), other.ID, "2026-08-01", time.Now().UTC()); err != nil {
		t.Fatalf("failed to seed other record: %v", err)
	}

	rec := ts.request(http.MethodGet, "/api/attendance/my-attendance", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("my-attendance status = %d", rec.Code)
	}
	var body struct {
		Attendance []AttendanceResponse `json:"attendance"`
	}
	ts.decode(rec, &body)
	if len(body.Attendance) != 1 {
		t.Fatalf("expected 1 record, got %d", len(body.Attendance))
	}
	if body.Attendance[0].UserID != worker.ID {
		t.Errorf("record user = %d, want %d", body.Attendance[0].UserID, worker.ID)
	}
}

// TestAllAttendance verifies the admin listing and its user filter.
func TestAllAttendance(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	_, adminToken := ts.createUser("att-all-admin", "admin")
	alice, _ := ts.createUser("att-all-alice", "employee")
	bob, _ := ts.createUser("att-all-bob", "employee")

	now := time.Now().UTC()
	for _, id := range []int64{alice.ID, bob.ID} {
		if _, err := ts.store.CreateAttendance(context.Background(), id, "2026-08-01", now); err != nil {
			t.Fatalf("failed to seed attendance: %v", err)
		}
	}

	rec := ts.request(http.MethodGet, "/api/attendance/all", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("all status = %d", rec.Code)
	}
	var body struct {
		Attendance []AttendanceResponse `json:"attendance"`
	}
	ts.decode(rec, &body)
	if len(body.Attendance) != 2 {
		t.Errorf("expected 2 records, got %d", len(body.Attendance))
	}

	rec = ts.request(http.MethodGet, "/api/attendance/all?user_id="+strconv.FormatInt(alice.ID, 10), adminToken, nil)
	ts.decode(rec, &body)
	if len(body.Attendance) != 1 || body.Attendance[0].UserID != alice.ID {
		t.Errorf("filter by user failed: %+v", body.Attendance)
	}

	rec = ts.request(http.MethodGet, "/api/attendance/all?user_id=abc", adminToken, nil)
	ts.wantError(rec, http.StatusBadRequest, ErrCodeInvalidRequest)
}
