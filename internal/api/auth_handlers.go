package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/presenzahq/presenza/internal/metrics"
	"github.com/presenzahq/presenza/internal/storage"
)

// LoginRequest is the request body for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses. The password hash never
// leaves the storage layer boundary.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func userResponse(u *storage.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Role:     u.Role,
	}
}

// LoginResponse is the success body for POST /api/auth/login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// HandleLogin verifies credentials and issues a session token.
// POST /api/auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	if req.Username == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, "Username and password required")
		return
	}

	user, err := h.storage.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			metrics.RecordAuthFailure("bad_credentials")
			WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid username or password")
			return
		}
		h.logger.Error("failed to look up user", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	if !h.auth.CheckPassword(req.Password, user.PasswordHash) {
		metrics.RecordAuthFailure("bad_credentials")
		h.logger.Warn("failed login attempt", "username", req.Username, "remote_addr", r.RemoteAddr)
		WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid username or password")
		return
	}

	token, err := h.auth.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		h.logger.Error("failed to issue session token", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(LoginResponse{Token: token, User: userResponse(user)}) //nolint:errcheck
}

// RegisterRequest is the request body for POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// HandleRegister creates a new employee account.
// POST /api/auth/register
// New accounts always get the employee role; admins are promoted via the
// users API.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	if req.Username == "" || req.Password == "" || req.FullName == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, "Username, password and full name required")
		return
	}
	if len(req.Password) < 8 {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, "Password must be at least 8 characters")
		return
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	user, err := h.storage.CreateUser(r.Context(), req.Username, hash, req.FullName, "employee")
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			WriteError(w, http.StatusConflict, ErrCodeConflict, "Username already taken")
			return
		}
		h.logger.Error("failed to create user", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(userResponse(user)) //nolint:errcheck
}
