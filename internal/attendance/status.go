// Package attendance defines the per-day attendance state machine: the
// derived status of a record and which actions are legal from each status.
package attendance

import (
	"fmt"

	"github.com/presenzahq/presenza/internal/storage"
)

// Status is the derived attendance state for one user on one day.
type Status string

const (
	// StatusNotStarted means no punch-in has been recorded.
	StatusNotStarted Status = "not_started"
	// StatusPresent means punched in with no open break and no punch-out.
	StatusPresent Status = "present"
	// StatusOnBreak means a break has been started but not ended.
	StatusOnBreak Status = "on_break"
	// StatusCompleted means punched out; the record accepts no further actions.
	StatusCompleted Status = "completed"
)

// Action is one attendance state change requested by a user.
type Action string

const (
	ActionPunchIn    Action = "punch_in"
	ActionPunchOut   Action = "punch_out"
	ActionBreakStart Action = "break_start"
	ActionBreakEnd   Action = "break_end"
)

// ParseAction validates a wire action value.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionPunchIn, ActionPunchOut, ActionBreakStart, ActionBreakEnd:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown action: %q", s)
}

// Derive computes the status of a record. It is the single derivation rule
// consumed by the server, the client and every badge in between; it must be
// recomputed on every read because the store is the source of truth.
//
// A nil record means the day has not started.
func Derive(rec *storage.AttendanceRecord) Status {
	switch {
	case rec == nil || rec.PunchIn == nil:
		return StatusNotStarted
	case rec.PunchOut != nil:
		return StatusCompleted
	case rec.BreakStart != nil && rec.BreakEnd == nil:
		return StatusOnBreak
	default:
		return StatusPresent
	}
}

// Allowed reports whether an action is legal from the given status.
//
//	not_started: punch_in only
//	present:     break_start or punch_out
//	on_break:    break_end only
//	completed:   nothing
//
// Break cycling (present <-> on_break) may repeat any number of times
// before punch-out; punch-out is reachable only from present.
func Allowed(status Status, action Action) bool {
	switch status {
	case StatusNotStarted:
		return action == ActionPunchIn
	case StatusPresent:
		return action == ActionBreakStart || action == ActionPunchOut
	case StatusOnBreak:
		return action == ActionBreakEnd
	default:
		return false
	}
}

// FieldFor maps an action to the storage column it stamps.
func FieldFor(action Action) string {
	switch action {
	case ActionPunchIn:
		return storage.FieldPunchIn
	case ActionPunchOut:
		return storage.FieldPunchOut
	case ActionBreakStart:
		return storage.FieldBreakStart
	case ActionBreakEnd:
		return storage.FieldBreakEnd
	}
	return ""
}
