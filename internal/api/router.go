package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/presenzahq/presenza/internal/attendance"
	"github.com/presenzahq/presenza/internal/auth"
	"github.com/presenzahq/presenza/internal/metrics"
	"github.com/presenzahq/presenza/internal/middleware"
	"github.com/presenzahq/presenza/internal/storage"
)

// maxRequestBody caps request bodies; all API payloads are small JSON.
const maxRequestBody = 64 * 1024

// NewRouter creates the server router with all routes and middleware.
func (h *Handler) NewRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.MaxBodySize(maxRequestBody))
	r.Use(metrics.Middleware)
	r.Use(middleware.HTTPLogging(h.logger))

	authError := func(w http.ResponseWriter, status int, err error) {
		code := ErrCodeInvalidCredentials
		reason := "invalid_token"
		if status == http.StatusForbidden {
			code = ErrCodeAdminRequired
			reason = "admin_required"
		} else if errors.Is(err, auth.ErrMissingToken) {
			reason = "missing_token"
		}
		metrics.RecordAuthFailure(reason)
		WriteError(w, status, code, err.Error())
	}
	requireAuth := h.auth.RequireAuth(authError)
	requireAdmin := auth.RequireAdmin(authError)

	// Public endpoints (no auth)
	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.HandleLogin)
		r.Post("/auth/register", h.HandleRegister)

		// Unauthenticated by design: the QR token is the credential
		r.Post("/qr-code/scan", h.HandleScan)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/users/profile", h.HandleProfile)

			r.Get("/qr-code/active", h.HandleActiveQRCode)
			r.Get("/qr-code/history", h.HandleQRCodeHistory)

			r.Post("/attendance/punch-in", h.handleAttendanceAction(attendance.ActionPunchIn))
			r.Post("/attendance/punch-out", h.handleAttendanceAction(attendance.ActionPunchOut))
			r.Post("/attendance/break-start", h.handleAttendanceAction(attendance.ActionBreakStart))
			r.Post("/attendance/break-end", h.handleAttendanceAction(attendance.ActionBreakEnd))
			r.Get("/attendance/today-status", h.HandleTodayStatus)
			r.Get("/attendance/my-attendance", h.HandleMyAttendance)

			r.Get("/shifts/my-shifts", h.HandleMyShifts)

			r.Post("/leave-requests", h.HandleCreateLeaveRequest)
			r.Get("/leave-requests/my-requests", h.HandleMyLeaveRequests)
			r.Put("/leave-requests/{id}", h.HandleUpdateLeaveRequest)

			// Admin-only management surface
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)

				r.Post("/loglevel", h.HandleSetLogLevel)

				r.Post("/qr-code/generate", h.HandleGenerateQRCode)
				r.Post("/qr-code/{id}/deactivate", h.HandleDeactivateQRCode)

				r.Get("/attendance/all", h.HandleAllAttendance)

				r.Post("/shifts", h.HandleCreateShift)
				r.Get("/shifts/all", h.HandleAllShifts)
				r.Put("/shifts/{id}", h.HandleUpdateShift)
				r.Delete("/shifts/{id}", h.HandleDeleteShift)

				r.Get("/leave-requests/pending", h.HandlePendingLeaveRequests)
				r.Get("/leave-requests/all", h.HandleAllLeaveRequests)
				r.Post("/leave-requests/{id}/approve", h.HandleDecideLeaveRequest(storage.LeaveStatusApproved))
				r.Post("/leave-requests/{id}/reject", h.HandleDecideLeaveRequest(storage.LeaveStatusRejected))

				r.Get("/users", h.HandleListUsers)
				r.Put("/users/{id}", h.HandleUpdateUser)
			})
		})
	})

	return r
}
