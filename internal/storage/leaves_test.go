package storage

import (
	"context"
	"errors"
	"testing"
)

// TestCreateLeaveRequest verifies new requests always start pending.
func TestCreateLeaveRequest(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()
	user := testUser(t, s, "leave-1")

	req, err := s.CreateLeaveRequest(ctx, &LeaveRequest{
		UserID:    user.ID,
		StartDate: "2026-09-10",
		EndDate:   "2026-09-12",
		Type:      "vacation",
		Reason:    "long weekend",
		Status:    LeaveStatusApproved, // must be ignored
	})
	if err != nil {
		t.Fatalf("CreateLeaveRequest failed: %v", err)
	}
	if req.Status != LeaveStatusPending {
		t.Errorf("expected pending status, got '%s'", req.Status)
	}

	got, err := s.GetLeaveRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetLeaveRequest failed: %v", err)
	}
	if got.Status != LeaveStatusPending {
		t.Errorf("expected stored status pending, got '%s'", got.Status)
	}
}

// TestSetLeaveRequestStatus verifies decisions apply once and only once.
func TestSetLeaveRequestStatus(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()
	user := testUser(t, s, "leave-2")

	req, err := s.CreateLeaveRequest(ctx, &LeaveRequest{
		UserID: user.ID, StartDate: "2026-09-10", EndDate: "2026-09-11", Type: "sick",
	})
	if err != nil {
		t.Fatalf("CreateLeaveRequest failed: %v", err)
	}

	if err := s.SetLeaveRequestStatus(ctx, req.ID, LeaveStatusApproved); err != nil {
		t.Fatalf("SetLeaveRequestStatus failed: %v", err)
	}

	// Second decision must lose
	err = s.SetLeaveRequestStatus(ctx, req.ID, LeaveStatusRejected)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for second decision, got %v", err)
	}

	got, err := s.GetLeaveRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetLeaveRequest failed: %v", err)
	}
	if got.Status != LeaveStatusApproved {
		t.Errorf("expected status approved, got '%s'", got.Status)
	}

	if err := s.SetLeaveRequestStatus(ctx, 99999, LeaveStatusApproved); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.SetLeaveRequestStatus(ctx, req.ID, "pending"); err == nil {
		t.Error("expected error for invalid target status")
	}
}

// TestUpdateLeaveRequestPendingOnly verifies edits are limited to
// undecided requests.
func TestUpdateLeaveRequestPendingOnly(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()
	user := testUser(t, s, "leave-3")

	req, err := s.CreateLeaveRequest(ctx, &LeaveRequest{
		UserID: user.ID, StartDate: "2026-09-20", EndDate: "2026-09-21", Type: "personal",
	})
	if err != nil {
		t.Fatalf("CreateLeaveRequest failed: %v", err)
	}

	req.EndDate = "2026-09-22"
	req.Reason = "extended"
	if err := s.UpdateLeaveRequest(ctx, req); err != nil {
		t.Fatalf("UpdateLeaveRequest failed: %v", err)
	}

	got, err := s.GetLeaveRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetLeaveRequest failed: %v", err)
	}
	if got.EndDate != "2026-09-22" || got.Reason != "extended" {
		t.Errorf("update not applied: %s / %s", got.EndDate, got.Reason)
	}

	if err := s.SetLeaveRequestStatus(ctx, req.ID, LeaveStatusRejected); err != nil {
		t.Fatalf("SetLeaveRequestStatus failed: %v", err)
	}
	err = s.UpdateLeaveRequest(ctx, req)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict editing a decided request, got %v", err)
	}

	missing := *req
	missing.ID = 99999
	if err := s.UpdateLeaveRequest(ctx, &missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestListLeaveRequests verifies the user and status filters.
func TestListLeaveRequests(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()
	alice := testUser(t, s, "leave-alice")
	bob := testUser(t, s, "leave-bob")

	mk := func(userID int64) *LeaveRequest {
		req, err := s.CreateLeaveRequest(ctx, &LeaveRequest{
			UserID: userID, StartDate: "2026-09-10", EndDate: "2026-09-11", Type: "vacation",
		})
		if err != nil {
			t.Fatalf("CreateLeaveRequest failed: %v", err)
		}
		return req
	}

	first := mk(alice.ID)
	mk(alice.ID)
	mk(bob.ID)

	if err := s.SetLeaveRequestStatus(ctx, first.ID, LeaveStatusApproved); err != nil {
		t.Fatalf("SetLeaveRequestStatus failed: %v", err)
	}

	requests, err := s.ListLeaveRequests(ctx, LeaveRequestFilter{UserID: alice.ID})
	if err != nil {
		t.Fatalf("ListLeaveRequests failed: %v", err)
	}
	if len(requests) != 2 {
		t.Errorf("expected 2 requests for alice, got %d", len(requests))
	}

	requests, err = s.ListLeaveRequests(ctx, LeaveRequestFilter{Status: LeaveStatusPending})
	if err != nil {
		t.Fatalf("ListLeaveRequests pending failed: %v", err)
	}
	if len(requests) != 2 {
		t.Errorf("expected 2 pending requests, got %d", len(requests))
	}

	requests, err = s.ListLeaveRequests(ctx, LeaveRequestFilter{UserID: alice.ID, Status: LeaveStatusApproved})
	if err != nil {
		t.Fatalf("ListLeaveRequests approved failed: %v", err)
	}
	if len(requests) != 1 || requests[0].ID != first.ID {
		t.Errorf("expected only the approved request, got %d", len(requests))
	}
}
