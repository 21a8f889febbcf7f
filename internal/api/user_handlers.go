package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/presenzahq/presenza/internal/auth"
	"github.com/presenzahq/presenza/internal/storage"
)

// HandleProfile returns the session user's profile.
// GET /api/users/profile
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())

	user, err := h.storage.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "User not found")
			return
		}
		h.logger.Error("failed to get user", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(userResponse(user)) //nolint:errcheck
}

// HandleListUsers returns all users.
// GET /api/users (admin only)
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.storage.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	response := make([]UserResponse, len(users))
	for i, u := range users {
		response[i] = userResponse(u)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"users": response}) //nolint:errcheck
}

// UpdateUserRequest is the request body for PUT /api/users/{id}.
type UpdateUserRequest struct {
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// HandleUpdateUser updates a user's full name and role.
// PUT /api/users/{id} (admin only)
func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	if req.FullName == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, "full_name required")
		return
	}
	if req.Role != "employee" && req.Role != "admin" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, "role must be employee or admin")
		return
	}

	if err := h.storage.UpdateUser(r.Context(), id, req.FullName, req.Role); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "User not found")
			return
		}
		h.logger.Error("failed to update user", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("user updated", "id", id, "role", req.Role)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "user updated"}) //nolint:errcheck
}
