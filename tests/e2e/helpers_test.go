//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// getEnv returns an environment variable or a fallback value.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// waitForService polls a URL until it's healthy or timeout is reached.
func waitForService(url string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("service not ready after %v", timeout)
}

// apiRequest makes an HTTP request to the server. An empty token omits the
// Authorization header.
func apiRequest(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, serverURL+path, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	return resp
}

// decodeBody decodes a JSON response body into out and closes it.
func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
}

// loginAdmin logs in with the bootstrap admin credentials and returns a
// session token.
func loginAdmin(t *testing.T) string {
	t.Helper()

	resp := apiRequest(t, "POST", "/api/auth/login", "", map[string]string{
		"username": adminUsername,
		"password": adminPassword,
	})
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("Admin login failed with status %d: %s", resp.StatusCode, raw)
	}

	var result struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &result)
	return result.Token
}

// registerEmployee creates a fresh employee account and returns its ID and
// a session token. Usernames are unique per call so day-scoped attendance
// state never collides between tests.
func registerEmployee(t *testing.T, fullName string) (int64, string) {
	t.Helper()

	username := fmt.Sprintf("e2e-user-%d", time.Now().UnixNano())
	const password = "e2e-password-123"

	resp := apiRequest(t, "POST", "/api/auth/register", "", map[string]string{
		"username":  username,
		"password":  password,
		"full_name": fullName,
	})
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("Register failed with status %d: %s", resp.StatusCode, raw)
	}

	var user struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, resp, &user)

	resp = apiRequest(t, "POST", "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("Login failed with status %d: %s", resp.StatusCode, raw)
	}

	var login struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &login)
	return user.ID, login.Token
}

// generateQRToken creates a fresh check-in token via the admin API and
// returns its ID and token string. It supersedes any previously active
// token.
func generateQRToken(t *testing.T, adminToken string, expiresHours int) (int64, string) {
	t.Helper()

	resp := apiRequest(t, "POST", "/api/qr-code/generate", adminToken, map[string]any{
		"expires_hours": expiresHours,
		"description":   "e2e",
	})
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("Generate QR token failed with status %d: %s", resp.StatusCode, raw)
	}

	var qr struct {
		ID    int64  `json:"id"`
		Token string `json:"token"`
	}
	decodeBody(t, resp, &qr)
	return qr.ID, qr.Token
}

// scan submits a scan request and returns the raw response.
func scan(t *testing.T, token string, userID int64, action string) *http.Response {
	t.Helper()
	return apiRequest(t, "POST", "/api/qr-code/scan", "", map[string]any{
		"token":   token,
		"user_id": userID,
		"action":  action,
	})
}
