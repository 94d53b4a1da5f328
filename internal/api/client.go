// ABOUTME: HTTP client for the workout API server.
// ABOUTME: Carries bearer auth and per-call idempotency keys.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RequestTimeout bounds every call, including the reachability probe.
const RequestTimeout = 5 * time.Second

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}

// IsAuthError reports whether err is a 401/403 from the server.
// Auth failures halt a drain pass instead of being retried blindly.
func IsAuthError(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden
	}
	return false
}

// Client talks to the workout API server.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewClient creates a client with the default request timeout.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: RequestTimeout},
	}
}

// Ping probes server reachability and returns the round-trip latency.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return 0, &StatusError{Code: resp.StatusCode}
	}
	return time.Since(start), nil
}

// StartSessionRequest creates a new workout session server-side.
type StartSessionRequest struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
}

// SessionResponse is the server's view of a session.
type SessionResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Paused         bool   `json:"paused"`
	TotalPausedSec int    `json:"total_paused_sec"`
}

// StartSession creates a session and returns its server-issued id.
func (c *Client) StartSession(ctx context.Context, req StartSessionRequest, idemKey string) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/sessions", req, idemKey, &out); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return &out, nil
}

// CreateLogRequest adds an exercise log to a session.
type CreateLogRequest struct {
	ExerciseID string `json:"exercise_id"`
	Name       string `json:"name"`
}

// LogResponse carries the server-issued log id.
type LogResponse struct {
	ID string `json:"id"`
}

// CreateExerciseLog adds an exercise log and returns its server id.
func (c *Client) CreateExerciseLog(ctx context.Context, sessionID string, req CreateLogRequest, idemKey string) (*LogResponse, error) {
	var out LogResponse
	path := "/api/v1/sessions/" + sessionID + "/exercises"
	if err := c.do(ctx, http.MethodPost, path, req, idemKey, &out); err != nil {
		return nil, fmt.Errorf("create exercise log: %w", err)
	}
	return &out, nil
}

// AppendSetRequest records one set against a log.
type AppendSetRequest struct {
	SetNumber int     `json:"set_number"`
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Completed bool    `json:"completed"`
}

// SetResponse carries the server set id and an optional PR flag.
type SetResponse struct {
	ID   string `json:"id"`
	IsPR bool   `json:"is_pr"`
}

// AppendSet appends a set to a log within a session.
func (c *Client) AppendSet(ctx context.Context, sessionID, logID string, req AppendSetRequest, idemKey string) (*SetResponse, error) {
	var out SetResponse
	path := "/api/v1/sessions/" + sessionID + "/logs/" + logID + "/sets"
	if err := c.do(ctx, http.MethodPost, path, req, idemKey, &out); err != nil {
		return nil, fmt.Errorf("append set: %w", err)
	}
	return &out, nil
}

// PauseRequest carries client-accumulated elapsed time so the server can
// reconstruct total paused time without trusting client clocks for order.
type PauseRequest struct {
	ElapsedSec int `json:"elapsed_sec"`
}

// PauseSession pauses an active session.
func (c *Client) PauseSession(ctx context.Context, sessionID string, req PauseRequest, idemKey string) (*SessionResponse, error) {
	var out SessionResponse
	path := "/api/v1/sessions/" + sessionID + "/pause"
	if err := c.do(ctx, http.MethodPost, path, req, idemKey, &out); err != nil {
		return nil, fmt.Errorf("pause session: %w", err)
	}
	return &out, nil
}

// ResumeSession resumes a paused session.
func (c *Client) ResumeSession(ctx context.Context, sessionID string, req PauseRequest, idemKey string) (*SessionResponse, error) {
	var out SessionResponse
	path := "/api/v1/sessions/" + sessionID + "/resume"
	if err := c.do(ctx, http.MethodPost, path, req, idemKey, &out); err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	return &out, nil
}

// CompleteRequest finalizes a session. Idempotent server-side.
type CompleteRequest struct {
	CompletedAt time.Time `json:"completed_at"`
	DurationSec int       `json:"duration_sec"`
	Notes       string    `json:"notes,omitempty"`
}

// CompleteSession marks a session complete.
func (c *Client) CompleteSession(ctx context.Context, sessionID string, req CompleteRequest, idemKey string) error {
	path := "/api/v1/sessions/" + sessionID + "/complete"
	if err := c.do(ctx, http.MethodPost, path, req, idemKey, nil); err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	return nil
}

// CancelSession deletes a session. Idempotent server-side.
func (c *Client) CancelSession(ctx context.Context, sessionID string, idemKey string) error {
	path := "/api/v1/sessions/" + sessionID
	if err := c.do(ctx, http.MethodDelete, path, nil, idemKey, nil); err != nil {
		return fmt.Errorf("cancel session: %w", err)
	}
	return nil
}

// do issues one JSON request and decodes the response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body any, idemKey string, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
