package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/presenzahq/presenza/internal/auth"
	"github.com/presenzahq/presenza/internal/storage"
)

// ShiftRequest is the request body for creating or updating a shift.
type ShiftRequest struct {
	UserID    int64  `json:"user_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes"`
}

// ShiftResponse represents a shift in API responses.
type ShiftResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes,omitempty"`
}

func shiftResponse(s *storage.Shift) ShiftResponse {
	return ShiftResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Date:      s.Date,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Notes:     s.Notes,
	}
}

func (req *ShiftRequest) validate() string {
	if req.UserID <= 0 {
		return "user_id required"
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return "date must be YYYY-MM-DD"
	}
	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return "start_time must be HH:MM"
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return "end_time must be HH:MM"
	}
	if !end.After(start) {
		return "end_time must be after start_time"
	}
	return ""
}

// HandleCreateShift schedules a new shift.
// POST /api/shifts (admin only)
func (h *Handler) HandleCreateShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	shift, err := h.storage.CreateShift(r.Context(), &storage.Shift{
		UserID:    req.UserID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	})
	if err != nil {
		h.logger.Error("failed to create shift", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("shift created", "id", shift.ID, "user_id", shift.UserID, "date", shift.Date)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(shiftResponse(shift)) //nolint:errcheck
}

// HandleUpdateShift replaces a shift's schedule.
// PUT /api/shifts/{id} (admin only)
func (h *Handler) HandleUpdateShift(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	shift := &storage.Shift{
		ID:        id,
		UserID:    req.UserID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	}
	if err := h.storage.UpdateShift(r.Context(), shift); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Shift not found")
			return
		}
		h.logger.Error("failed to update shift", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(shiftResponse(shift)) //nolint:errcheck
}

// HandleDeleteShift removes a shift.
// DELETE /api/shifts/{id} (admin only)
func (h *Handler) HandleDeleteShift(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.storage.DeleteShift(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Shift not found")
			return
		}
		h.logger.Error("failed to delete shift", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleMyShifts lists the session user's shifts.
// GET /api/shifts/my-shifts?start_date=...&end_date=...
func (h *Handler) HandleMyShifts(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())
	h.listShifts(w, r, claims.UserID)
}

// HandleAllShifts lists shifts across users.
// GET /api/shifts/all?start_date=...&end_date=...&user_id=... (admin only)
func (h *Handler) HandleAllShifts(w http.ResponseWriter, r *http.Request) {
	var userID int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid user_id")
			return
		}
		userID = parsed
	}
	h.listShifts(w, r, userID)
}

func (h *Handler) listShifts(w http.ResponseWriter, r *http.Request, userID int64) {
	filter := storage.ShiftFilter{
		UserID:    userID,
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	shifts, err := h.storage.ListShifts(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list shifts", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	response := make([]ShiftResponse, len(shifts))
	for i, s := range shifts {
		response[i] = shiftResponse(s)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"shifts": response}) //nolint:errcheck
}

// idParam parses the {id} URL parameter, writing a 400 on failure.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}
