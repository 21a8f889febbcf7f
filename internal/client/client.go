// Package client provides the Go client for the Presenza API, used by the
// desktop wrapper and the terminal scanner.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	// DefaultBaseURL is the default base URL for a locally running server.
	DefaultBaseURL = "http://localhost:8080"
)

// Client is an HTTP client for the Presenza API. It holds no server state:
// every read re-fetches, because the server is the source of truth.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (useful for testing with httptest).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a new Presenza API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetAuthToken stores the session token sent as a bearer header on
// authenticated endpoints.
func (c *Client) SetAuthToken(token string) {
	c.authToken = token
}

// Login authenticates and stores the returned session token on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	c.authToken = result.Token
	return &result, nil
}

// Scan submits a token + user + action. The endpoint is unauthenticated;
// the QR token itself is the credential.
func (c *Client) Scan(ctx context.Context, token string, userID int64, action string) (*ScanResult, error) {
	var result ScanResult
	err := c.do(ctx, http.MethodPost, "/api/qr-code/scan", map[string]any{
		"token":   token,
		"user_id": userID,
		"action":  action,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateQRCode creates a new QR token, superseding the active one.
// Requires an admin session.
func (c *Client) GenerateQRCode(ctx context.Context, description string, expiresHours int) (*QRCode, error) {
	var result QRCode
	err := c.do(ctx, http.MethodPost, "/api/qr-code/generate", map[string]any{
		"description":   description,
		"expires_hours": expiresHours,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ActiveQRCode returns the current active token, or nil if none is
// scannable right now.
func (c *Client) ActiveQRCode(ctx context.Context) (*QRCode, error) {
	var result struct {
		QRCode *QRCode `json:"qr_code"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/qr-code/active", nil, &result); err != nil {
		return nil, err
	}
	return result.QRCode, nil
}

// QRCodeHistory returns all tokens ever created, most recent first.
func (c *Client) QRCodeHistory(ctx context.Context) ([]*QRCode, error) {
	var result struct {
		QRCodes []*QRCode `json:"qr_codes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/qr-code/history", nil, &result); err != nil {
		return nil, err
	}
	return result.QRCodes, nil
}

// DeactivateQRCode deactivates a token. Idempotent. Requires an admin session.
func (c *Client) DeactivateQRCode(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/qr-code/%d/deactivate", id), nil, nil)
}

// PunchIn records a punch-in for the session user.
func (c *Client) PunchIn(ctx context.Context) (*ActionResult, error) {
	return c.attendanceAction(ctx, "punch-in")
}

// PunchOut records a punch-out for the session user.
func (c *Client) PunchOut(ctx context.Context) (*ActionResult, error) {
	return c.attendanceAction(ctx, "punch-out")
}

// BreakStart records a break start for the session user.
func (c *Client) BreakStart(ctx context.Context) (*ActionResult, error) {
	return c.attendanceAction(ctx, "break-start")
}

// BreakEnd records a break end for the session user.
func (c *Client) BreakEnd(ctx context.Context) (*ActionResult, error) {
	return c.attendanceAction(ctx, "break-end")
}

func (c *Client) attendanceAction(ctx context.Context, path string) (*ActionResult, error) {
	var result ActionResult
	if err := c.do(ctx, http.MethodPost, "/api/attendance/"+path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TodayStatus returns the session user's derived status for today.
func (c *Client) TodayStatus(ctx context.Context) (*TodayStatus, error) {
	var result TodayStatus
	if err := c.do(ctx, http.MethodGet, "/api/attendance/today-status", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MyAttendance lists the session user's attendance in a date range.
// Empty bounds are unbounded.
func (c *Client) MyAttendance(ctx context.Context, startDate, endDate string) ([]*Attendance, error) {
	var result struct {
		Attendance []*Attendance `json:"attendance"`
	}
	path := "/api/attendance/my-attendance" + dateRangeQuery(startDate, endDate)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Attendance, nil
}

// MyShifts lists the session user's shifts in a date range.
func (c *Client) MyShifts(ctx context.Context, startDate, endDate string) ([]*Shift, error) {
	var result struct {
		Shifts []*Shift `json:"shifts"`
	}
	path := "/api/shifts/my-shifts" + dateRangeQuery(startDate, endDate)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Shifts, nil
}

func dateRangeQuery(startDate, endDate string) string {
	query := url.Values{}
	if startDate != "" {
		query.Set("start_date", startDate)
	}
	if endDate != "" {
		query.Set("end_date", endDate)
	}
	if len(query) == 0 {
		return ""
	}
	return "?" + query.Encode()
}

// do executes one API request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Code: CodeNetwork, Message: err.Error(), retryable: true}
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Code: CodeNetwork, Message: err.Error(), retryable: true}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
