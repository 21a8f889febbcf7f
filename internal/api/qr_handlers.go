package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/presenzahq/presenza/internal/attendance"
	"github.com/presenzahq/presenza/internal/auth"
	"github.com/presenzahq/presenza/internal/checkin"
	"github.com/presenzahq/presenza/internal/metrics"
	"github.com/presenzahq/presenza/internal/storage"
)

// QRCodeResponse represents a QR token in API responses.
type QRCodeResponse struct {
	ID          int64  `json:"id"`
	Token       string `json:"token"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	ExpiresAt   string `json:"expires_at,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedBy   int64  `json:"created_by"`
	Status      string `json:"status,omitempty"`
}

func qrCodeResponse(t *storage.QRToken, status checkin.TokenStatus) QRCodeResponse {
	resp := QRCodeResponse{
		ID:          t.ID,
		Token:       t.Token,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		IsActive:    t.IsActive,
		CreatedBy:   t.CreatedBy,
		Status:      string(status),
	}
	if t.ExpiresAt != nil {
		resp.ExpiresAt = t.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// GenerateQRCodeRequest is the request body for POST /api/qr-code/generate.
// ExpiresHours absent or zero means no expiry.
type GenerateQRCodeRequest struct {
	Description  string `json:"description"`
	ExpiresHours int    `json:"expires_hours"`
}

// HandleGenerateQRCode creates a new QR token, superseding the active one.
// POST /api/qr-code/generate (admin only)
func (h *Handler) HandleGenerateQRCode(w http.ResponseWriter, r *http.Request) {
	var req GenerateQRCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	claims := auth.ClaimsFrom(r.Context())

	token, err := h.registry.Generate(r.Context(), req.Description, req.ExpiresHours, claims.UserID)
	if err != nil {
		if errors.Is(err, checkin.ErrValidation) {
			WriteError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		h.logger.Error("failed to generate qr token", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	metrics.RecordTokenGenerated()
	h.logger.Info("qr token generated", "id", token.ID, "description", token.Description, "created_by", claims.UserID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(qrCodeResponse(token, checkin.TokenActive)) //nolint:errcheck
}

// HandleActiveQRCode returns the current active, non-expired token.
// GET /api/qr-code/active
// Responds {"qr_code": null} if no token is currently scannable.
func (h *Handler) HandleActiveQRCode(w http.ResponseWriter, r *http.Request) {
	token, err := h.registry.Active(r.Context())
	if err != nil {
		h.logger.Error("failed to get active qr token", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	var body map[string]any
	if token == nil {
		body = map[string]any{"qr_code": nil}
	} else {
		body = map[string]any{"qr_code": qrCodeResponse(token, checkin.TokenActive)}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// HandleQRCodeHistory returns all tokens ever created, most recent first,
// each annotated with its derived status.
// GET /api/qr-code/history
func (h *Handler) HandleQRCodeHistory(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.registry.History(r.Context())
	if err != nil {
		h.logger.Error("failed to list qr tokens", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	response := make([]QRCodeResponse, len(tokens))
	for i, t := range tokens {
		response[i] = qrCodeResponse(t.QRToken, t.Status)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"qr_codes": response}) //nolint:errcheck
}

// HandleDeactivateQRCode deactivates a token. Idempotent.
// POST /api/qr-code/{id}/deactivate (admin only)
func (h *Handler) HandleDeactivateQRCode(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid QR code ID")
		return
	}

	if err := h.registry.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "QR code not found")
			return
		}
		h.logger.Error("failed to deactivate qr token", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("qr token deactivated", "id", id)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte("{}")) //nolint:errcheck
}

// ScanRequest is the request body for POST /api/qr-code/scan.
type ScanRequest struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
	Action string `json:"action"`
}

// ScanResponse is the success body for POST /api/qr-code/scan.
type ScanResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Status    string `json:"status"`
}

// HandleScan resolves a scanned token + user + action into an attendance
// stamp. Deliberately unauthenticated: the QR token itself is the
// credential.
// POST /api/qr-code/scan
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	action, err := attendance.ParseAction(req.Action)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		metrics.RecordScan(req.Action, ErrCodeValidation)
		return
	}

	result, err := h.dispatcher.Scan(r.Context(), req.Token, req.UserID, action)
	if err != nil {
		code := h.writeScanError(w, err)
		metrics.RecordScan(string(action), code)
		return
	}

	metrics.RecordScan(string(action), "success")
	h.logger.Info("scan recorded", "user_id", req.UserID, "action", action, "status", result.Status)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ScanResponse{ //nolint:errcheck
		Message:   fmt.Sprintf("%s recorded for %s", actionLabel(result.Action), result.UserName),
		Timestamp: result.Timestamp.Format(time.RFC3339),
		User:      result.UserName,
		Status:    string(result.Status),
	})
}

// actionLabel renders an action for user-facing messages.
func actionLabel(a attendance.Action) string {
	switch a {
	case attendance.ActionPunchIn:
		return "Punch-in"
	case attendance.ActionPunchOut:
		return "Punch-out"
	case attendance.ActionBreakStart:
		return "Break start"
	case attendance.ActionBreakEnd:
		return "Break end"
	}
	return string(a)
}
