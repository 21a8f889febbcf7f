package attendance

import (
	"testing"
	"time"

	"github.com/presenzahq/presenza/internal/storage"
)

func ts(hour int) *time.Time {
	t := time.Date(2026, 9, 1, hour, 0, 0, 0, time.UTC)
	return &t
}

// TestDerive verifies status derivation across record shapes.
func TestDerive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  *storage.AttendanceRecord
		want Status
	}{
		{"nil record", nil, StatusNotStarted},
		{"no punch in", &storage.AttendanceRecord{}, StatusNotStarted},
		{"punched in", &storage.AttendanceRecord{PunchIn: ts(9)}, StatusPresent},
		{"on break", &storage.AttendanceRecord{PunchIn: ts(9), BreakStart: ts(12)}, StatusOnBreak},
		{"back from break", &storage.AttendanceRecord{PunchIn: ts(9), BreakStart: ts(12), BreakEnd: ts(13)}, StatusPresent},
		{"punched out", &storage.AttendanceRecord{PunchIn: ts(9), PunchOut: ts(17)}, StatusCompleted},
		{"punched out mid-break record", &storage.AttendanceRecord{PunchIn: ts(9), BreakStart: ts(12), PunchOut: ts(17)}, StatusCompleted},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Derive(tt.rec); got != tt.want {
				t.Errorf("Derive() = %s, want %s", got, tt.want)
			}
		})
	}
}

// TestAllowed verifies the full legality table.
func TestAllowed(t *testing.T) {
	t.Parallel()

	allowed := map[Status][]Action{
		StatusNotStarted: {ActionPunchIn},
		StatusPresent:    {ActionBreakStart, ActionPunchOut},
		StatusOnBreak:    {ActionBreakEnd},
		StatusCompleted:  {},
	}

	statuses := []Status{StatusNotStarted, StatusPresent, StatusOnBreak, StatusCompleted}
	actions := []Action{ActionPunchIn, ActionPunchOut, ActionBreakStart, ActionBreakEnd}

	for _, status := range statuses {
		for _, action := range actions {
			want := false
			for _, a := range allowed[status] {
				if a == action {
					want = true
				}
			}
			if got := Allowed(status, action); got != want {
				t.Errorf("Allowed(%s, %s) = %v, want %v", status, action, got, want)
			}
		}
	}
}

// TestParseAction verifies wire value validation.
func TestParseAction(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"punch_in", "punch_out", "break_start", "break_end"} {
		action, err := ParseAction(valid)
		if err != nil {
			t.Errorf("ParseAction(%q) failed: %v", valid, err)
		}
		if string(action) != valid {
			t.Errorf("ParseAction(%q) = %s", valid, action)
		}
	}

	for _, invalid := range []string{"", "punch", "PUNCH_IN", "break"} {
		if _, err := ParseAction(invalid); err == nil {
			t.Errorf("ParseAction(%q) should fail", invalid)
		}
	}
}

// TestFieldFor verifies the action-to-column mapping.
func TestFieldFor(t *testing.T) {
	t.Parallel()

	tests := map[Action]string{
		ActionPunchIn:    storage.FieldPunchIn,
		ActionPunchOut:   storage.FieldPunchOut,
		ActionBreakStart: storage.FieldBreakStart,
		ActionBreakEnd:   storage.FieldBreakEnd,
	}
	for action, want := range tests {
		if got := FieldFor(action); got != want {
			t.Errorf("FieldFor(%s) = %s, want %s", action, got, want)
		}
	}
	if got := FieldFor(Action("bogus")); got != "" {
		t.Errorf("FieldFor(bogus) = %s, want empty", got)
	}
}
