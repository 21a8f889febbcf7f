package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/presenzahq/presenza/internal/attendance"
	"github.com/presenzahq/presenza/internal/auth"
	"github.com/presenzahq/presenza/internal/storage"
)

// AttendanceResponse represents one day's attendance in API responses.
// Status is derived on every read; it is never stored.
type AttendanceResponse struct {
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

func attendanceResponse(rec *storage.AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		ID:         rec.ID,
		UserID:     rec.UserID,
		Date:       rec.Date,
		PunchIn:    formatTimePtr(rec.PunchIn),
		BreakStart: formatTimePtr(rec.BreakStart),
		BreakEnd:   formatTimePtr(rec.BreakEnd),
		PunchOut:   formatTimePtr(rec.PunchOut),
		Status:     string(attendance.Derive(rec)),
		Notes:      rec.Notes,
	}
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// handleAttendanceAction applies one attendance action for the session
// user. The legality check and stamp run server-side through the same
// dispatcher path as QR scans.
func (h *Handler) handleAttendanceAction(action attendance.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFrom(r.Context())

		result, err := h.dispatcher.Apply(r.Context(), claims.UserID, action)
		if err != nil {
			h.writeScanError(w, err)
			return
		}

		h.logger.Info("attendance action recorded", "user_id", claims.UserID, "action", action)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"message":   actionLabel(action) + " recorded",
			"timestamp": result.Timestamp.Format(time.RFC3339),
			"status":    string(result.Status),
		})
	}
}

// HandleTodayStatus returns the session user's derived status for today.
// GET /api/attendance/today-status
func (h *Handler) HandleTodayStatus(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())
	date := h.now().UTC().Format("2006-01-02")

	rec, err := h.storage.GetAttendance(r.Context(), claims.UserID, date)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.logger.Error("failed to load attendance", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	body := map[string]any{
		"date":   date,
		"status": string(attendance.Derive(rec)),
	}
	if rec != nil {
		resp := attendanceResponse(rec)
		body["attendance"] = resp
	} else {
		body["attendance"] = nil
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// HandleMyAttendance lists the session user's attendance records.
// GET /api/attendance/my-attendance?start_date=...&end_date=...
func (h *Handler) HandleMyAttendance(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())
	h.listAttendance(w, r, claims.UserID)
}

// HandleAllAttendance lists attendance records across users.
// GET /api/attendance/all?start_date=...&end_date=...&user_id=... (admin only)
func (h *Handler) HandleAllAttendance(w http.ResponseWriter, r *http.Request) {
	var userID int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid user_id")
			return
		}
		userID = parsed
	}
	h.listAttendance(w, r, userID)
}

func (h *Handler) listAttendance(w http.ResponseWriter, r *http.Request, userID int64) {
	filter := storage.AttendanceFilter{
		UserID:    userID,
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	records, err := h.storage.ListAttendance(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list attendance", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	response := make([]AttendanceResponse, len(records))
	for i, rec := range records {
		response[i] = attendanceResponse(rec)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"attendance": response}) //nolint:errcheck
}
