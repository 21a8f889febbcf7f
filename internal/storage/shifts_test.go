package storage

import (
	"context"
	"errors"
	"testing"
)

// TestShiftCRUD walks a shift through create, read, update and delete.
func TestShiftCRUD(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()
	user := testUser(t, s, "shift-worker")

	shift, err := s.CreateShift(ctx, &Shift{
		UserID:    user.ID,
		Date:      "2026-09-05",
		StartTime: "09:00",
		EndTime:   "17:00",
		Notes:     "front desk",
	})
	if err != nil {
		t.Fatalf("CreateShift failed: %v", err)
	}
	if shift.ID <= 0 {
		t.Errorf("expected positive ID, got %d", shift.ID)
	}

	got, err := s.GetShift(ctx, shift.ID)
	if err != nil {
		t.Fatalf("GetShift failed: %v", err)
	}
	if got.StartTime != "09:00" || got.EndTime != "17:00" {
		t.Errorf("unexpected times: %s-%s", got.StartTime, got.EndTime)
	}

	got.StartTime = "10:00"
	got.Notes = "late start"
	if err := s.UpdateShift(ctx, got); err != nil {
		t.Fatalf("UpdateShift failed: %v", err)
	}
	got, err = s.GetShift(ctx, shift.ID)
	if err != nil {
		t.Fatalf("GetShift after update failed: %v", err)
	}
	if got.StartTime != "10:00" || got.Notes != "late start" {
		t.Errorf("update not applied: %s / %s", got.StartTime, got.Notes)
	}

	if err := s.DeleteShift(ctx, shift.ID); err != nil {
		t.Fatalf("DeleteShift failed: %v", err)
	}
	if _, err := s.GetShift(ctx, shift.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteShift(ctx, shift.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for repeat delete, got %v", err)
	}
}

// TestListShifts verifies filters and soonest-first ordering.
func TestListShifts(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()
	alice := testUser(t, s, "shift-alice")
	bob := testUser(t, s, "shift-bob")

	for _, day := range []string{"2026-09-03", "2026-09-01", "2026-09-02"} {
		if _, err := s.CreateShift(ctx, &Shift{UserID: alice.ID, Date: day, StartTime: "09:00", EndTime: "17:00"}); err != nil {
			t.Fatalf("CreateShift %s failed: %v", day, err)
		}
	}
	if _, err := s.CreateShift(ctx, &Shift{UserID: bob.ID, Date: "2026-09-01", StartTime: "12:00", EndTime: "20:00"}); err != nil {
		t.Fatalf("CreateShift bob failed: %v", err)
	}

	shifts, err := s.ListShifts(ctx, ShiftFilter{UserID: alice.ID})
	if err != nil {
		t.Fatalf("ListShifts failed: %v", err)
	}
	if len(shifts) != 3 {
		t.Fatalf("expected 3 shifts, got %d", len(shifts))
	}
	if shifts[0].Date != "2026-09-01" {
		t.Errorf("expected soonest shift first, got %s", shifts[0].Date)
	}

	shifts, err = s.ListShifts(ctx, ShiftFilter{StartDate: "2026-09-02", EndDate: "2026-09-03"})
	if err != nil {
		t.Fatalf("ListShifts with range failed: %v", err)
	}
	if len(shifts) != 2 {
		t.Errorf("expected 2 shifts in range, got %d", len(shifts))
	}
}
