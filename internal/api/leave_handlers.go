package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/presenzahq/presenza/internal/auth"
	"github.com/presenzahq/presenza/internal/storage"
)

// LeaveRequestBody is the request body for creating or updating a leave request.
type LeaveRequestBody struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Type      string `json:"type"`
	Reason    string `json:"reason"`
}

// LeaveRequestResponse represents a leave request in API responses.
type LeaveRequestResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Type      string `json:"type"`
	Reason    string `json:"reason,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func leaveRequestResponse(lr *storage.LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:        lr.ID,
		UserID:    lr.UserID,
		StartDate: lr.StartDate,
		EndDate:   lr.EndDate,
		Type:      lr.Type,
		Reason:    lr.Reason,
		Status:    lr.Status,
		CreatedAt: lr.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (req *LeaveRequestBody) validate() string {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return "start_date must be YYYY-MM-DD"
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return "end_date must be YYYY-MM-DD"
	}
	if end.Before(start) {
		return "end_date must not be before start_date"
	}
	switch req.Type {
	case "vacation", "sick", "personal":
	default:
		return "type must be one of: vacation, sick, personal"
	}
	return ""
}

// HandleCreateLeaveRequest files a new leave request for the session user.
// POST /api/leave-requests
func (h *Handler) HandleCreateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	var req LeaveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	claims := auth.ClaimsFrom(r.Context())
	created, err := h.storage.CreateLeaveRequest(r.Context(), &storage.LeaveRequest{
		UserID:    claims.UserID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Type:      req.Type,
		Reason:    req.Reason,
	})
	if err != nil {
		h.logger.Error("failed to create leave request", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("leave request created", "id", created.ID, "user_id", claims.UserID, "type", created.Type)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(leaveRequestResponse(created)) //nolint:errcheck
}

// HandleUpdateLeaveRequest edits a pending leave request. Only the owner
// may edit, and only while the request is still pending.
// PUT /api/leave-requests/{id}
func (h *Handler) HandleUpdateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req LeaveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	claims := auth.ClaimsFrom(r.Context())
	existing, err := h.storage.GetLeaveRequest(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Leave request not found")
			return
		}
		h.logger.Error("failed to get leave request", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}
	if existing.UserID != claims.UserID && claims.Role != "admin" {
		WriteError(w, http.StatusForbidden, ErrCodeAdminRequired, "Not your leave request")
		return
	}

	updated := &storage.LeaveRequest{
		ID:        id,
		UserID:    existing.UserID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Type:      req.Type,
		Reason:    req.Reason,
		Status:    existing.Status,
		CreatedAt: existing.CreatedAt,
	}
	if err := h.storage.UpdateLeaveRequest(r.Context(), updated); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Leave request not found")
		case errors.Is(err, storage.ErrConflict):
			WriteError(w, http.StatusConflict, ErrCodeConflict, "Leave request has already been decided")
		default:
			h.logger.Error("failed to update leave request", "error", err)
			WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(leaveRequestResponse(updated)) //nolint:errcheck
}

// HandleDecideLeaveRequest approves or rejects a pending request.
// POST /api/leave-requests/{id}/approve and /reject (admin only)
func (h *Handler) HandleDecideLeaveRequest(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}

		if err := h.storage.SetLeaveRequestStatus(r.Context(), id, status); err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Leave request not found")
			case errors.Is(err, storage.ErrConflict):
				WriteError(w, http.StatusConflict, ErrCodeConflict, "Leave request has already been decided")
			default:
				h.logger.Error("failed to decide leave request", "error", err)
				WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
			}
			return
		}

		h.logger.Info("leave request decided", "id", id, "status", status)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status}) //nolint:errcheck
	}
}

// HandleMyLeaveRequests lists the session user's leave requests.
// GET /api/leave-requests/my-requests?status=...
func (h *Handler) HandleMyLeaveRequests(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())
	h.listLeaveRequests(w, r, claims.UserID, r.URL.Query().Get("status"))
}

// HandlePendingLeaveRequests lists all pending requests.
// GET /api/leave-requests/pending (admin only)
func (h *Handler) HandlePendingLeaveRequests(w http.ResponseWriter, r *http.Request) {
	h.listLeaveRequests(w, r, 0, storage.LeaveStatusPending)
}

// HandleAllLeaveRequests lists requests across users.
// GET /api/leave-requests/all?status=...&user_id=... (admin only)
func (h *Handler) HandleAllLeaveRequests(w http.ResponseWriter, r *http.Request) {
	var userID int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid user_id")
			return
		}
		userID = parsed
	}
	h.listLeaveRequests(w, r, userID, r.URL.Query().Get("status"))
}

func (h *Handler) listLeaveRequests(w http.ResponseWriter, r *http.Request, userID int64, status string) {
	requests, err := h.storage.ListLeaveRequests(r.Context(), storage.LeaveRequestFilter{
		UserID: userID,
		Status: status,
	})
	if err != nil {
		h.logger.Error("failed to list leave requests", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	response := make([]LeaveRequestResponse, len(requests))
	for i, lr := range requests {
		response[i] = leaveRequestResponse(lr)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"leave_requests": response}) //nolint:errcheck
}
