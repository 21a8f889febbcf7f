package api

import (
	"net/http"
	"strconv"
	"testing"
)

// TestLeaveRequestLifecycle walks create, list, approve over HTTP.
func TestLeaveRequestLifecycle(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	_, adminToken := ts.createUser("leave-admin", "admin")
	worker, workerToken := ts.createUser("leave-worker", "employee")

	rec := ts.request(http.MethodPost, "/api/leave-requests", workerToken, LeaveRequestBody{
		StartDate: "2026-09-10",
		EndDate:   "2026-09-12",
		Type:      "vacation",
		Reason:    "long weekend",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var created LeaveRequestResponse
	ts.decode(rec, &created)
	if created.Status != "pending" {
		t.Errorf("status = %q, want pending", created.Status)
	}
	if created.UserID != worker.ID {
		t.Errorf("user_id = %d, want session user %d", created.UserID, worker.ID)
	}

	// Shows up in both the personal and the admin pending list
	rec = ts.request(http.MethodGet, "/api/leave-requests/my-requests", workerToken, nil)
	var list struct {
		LeaveRequests []LeaveRequestResponse `json:"leave_requests"`
	}
	ts.decode(rec, &list)
	if len(list.LeaveRequests) != 1 {
		t.Fatalf("expected 1 request in my-requests, got %d", len(list.LeaveRequests))
	}

	rec = ts.request(http.MethodGet, "/api/leave-requests/pending", adminToken, nil)
	ts.decode(rec, &list)
	if len(list.LeaveRequests) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(list.LeaveRequests))
	}

	idPath := "/api/leave-requests/" + strconv.FormatInt(created.ID, 10)

	rec = ts.request(http.MethodPost, idPath+"/approve", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d (body %s)", rec.Code, rec.Body.String())
	}

	// A second decision must conflict
	rec = ts.request(http.MethodPost, idPath+"/reject", adminToken, nil)
	ts.wantError(rec, http.StatusConflict, ErrCodeConflict)

	rec = ts.request(http.MethodGet, "/api/leave-requests/pending", adminToken, nil)
	ts.decode(rec, &list)
	if len(list.LeaveRequests) != 0 {
		t.Errorf("expected empty pending list, got %d", len(list.LeaveRequests))
	}
}

// TestLeaveRequestValidation verifies payload validation.
func TestLeaveRequestValidation(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	_, token := ts.createUser("leave-val", "employee")

	bad := []LeaveRequestBody{
		{StartDate: "tomorrow", EndDate: "2026-09-12", Type: "vacation"},
		{StartDate: "2026-09-10", EndDate: "soon", Type: "vacation"},
		{StartDate: "2026-09-12", EndDate: "2026-09-10", Type: "vacation"},
		{StartDate: "2026-09-10", EndDate: "2026-09-12", Type: "sabbatical"},
	}
	for i, req := range bad {
		rec := ts.request(http.MethodPost, "/api/leave-requests", token, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want 400", i, rec.Code)
		}
	}
}

// TestLeaveRequestOwnership verifies only the owner or an admin may edit,
// and only while pending.
func TestLeaveRequestOwnership(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	_, adminToken := ts.createUser("leave-own-admin", "admin")
	_, ownerToken := ts.createUser("leave-owner", "employee")
	_, strangerToken := ts.createUser("leave-stranger", "employee")

	rec := ts.request(http.MethodPost, "/api/leave-requests", ownerToken, LeaveRequestBody{
		StartDate: "2026-09-10", EndDate: "2026-09-11", Type: "personal",
	})
	var created LeaveRequestResponse
	ts.decode(rec, &created)
	idPath := "/api/leave-requests/" + strconv.FormatInt(created.ID, 10)

	edit := LeaveRequestBody{StartDate: "2026-09-10", EndDate: "2026-09-13", Type: "personal"}

	rec = ts.request(http.MethodPut, idPath, strangerToken, edit)
	if rec.Code != http.StatusForbidden {
		t.Errorf("stranger edit status = %d, want 403", rec.Code)
	}

	rec = ts.request(http.MethodPut, idPath, ownerToken, edit)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner edit status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var updated LeaveRequestResponse
	ts.decode(rec, &updated)
	if updated.EndDate != "2026-09-13" {
		t.Errorf("end_date = %q, want 2026-09-13", updated.EndDate)
	}

	rec = ts.request(http.MethodPost, idPath+"/reject", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reject status = %d", rec.Code)
	}

	// Decided requests are frozen
	rec = ts.request(http.MethodPut, idPath, ownerToken, edit)
	ts.wantError(rec, http.StatusConflict, ErrCodeConflict)

	rec = ts.request(http.MethodPut, "/api/leave-requests/99999", ownerToken, edit)
	ts.wantError(rec, http.StatusNotFound, ErrCodeNotFound)
}
