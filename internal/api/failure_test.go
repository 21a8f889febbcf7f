package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/presenzahq/presenza/internal/auth"
	"github.com/presenzahq/presenza/internal/storage"
	"github.com/presenzahq/presenza/internal/testutil/mockstore"
)

// newMockServer wires the full router over a mock store so storage
// failures can be injected without a database.
func newMockServer(t *testing.T, store *mockstore.MockStorage) (http.Handler, *auth.Service) {
	t.Helper()

	authSvc := auth.NewService([]byte(strings.Repeat("k", 32)), 0)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(store, authSvc, new(slog.LevelVar), logger)
	return h.NewRouter(), authSvc
}

func TestReadyDegraded(t *testing.T) {
	t.Parallel()

	store := &mockstore.MockStorage{
		PingFunc: func(ctx context.Context) error {
			return errors.New("database is locked")
		},
	}
	router, _ := newMockServer(t, store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"database":"unavailable"`) {
		t.Errorf("body = %s", body)
	}
}

func TestScanStorageFailure(t *testing.T) {
	t.Parallel()

	store := &mockstore.MockStorage{
		GetQRTokenByStringFunc: func(ctx context.Context, token string) (*storage.QRToken, error) {
			return nil, errors.New("disk I/O error")
		},
	}
	router, _ := newMockServer(t, store)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/qr-code/scan",
		strings.NewReader(`{"token":"tok-1","user_id":1,"action":"punch_in"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"error":"internal_error"`) {
		t.Errorf("body = %s", body)
	}
	if strings.Contains(body, "disk I/O error") {
		t.Error("internal error detail leaked to the client")
	}
}

func TestListUsersStorageFailure(t *testing.T) {
	t.Parallel()

	store := &mockstore.MockStorage{
		ListUsersFunc: func(ctx context.Context) ([]*storage.User, error) {
			return nil, errors.New("disk I/O error")
		},
	}
	router, authSvc := newMockServer(t, store)

	token, err := authSvc.GenerateToken(1, "admin", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"error":"internal_error"`) {
		t.Errorf("body = %s", body)
	}
}

func TestGenerateQRCodeStorageFailure(t *testing.T) {
	t.Parallel()

	store := &mockstore.MockStorage{
		CreateQRTokenFunc: func(ctx context.Context, token, description string, expiresAt *time.Time, createdBy int64) (*storage.QRToken, error) {
			return nil, errors.New("disk I/O error")
		},
	}
	router, authSvc := newMockServer(t, store)

	token, err := authSvc.GenerateToken(1, "admin", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/qr-code/generate",
		strings.NewReader(`{"expires_hours":24}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"error":"internal_error"`) {
		t.Errorf("body = %s", body)
	}
}
