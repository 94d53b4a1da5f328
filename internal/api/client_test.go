// ABOUTME: Tests for the workout API client.
// ABOUTME: Uses httptest servers; no real network.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSessionSendsAuthAndIdempotencyKey(t *testing.T) {
	var gotPath, gotAuth, gotKey, gotContentType string
	var gotBody StartSessionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("Idempotency-Key")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(SessionResponse{ID: "sess-1", Name: gotBody.Name})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-123")
	resp, err := c.StartSession(context.Background(), StartSessionRequest{Name: "Leg Day", StartTime: time.Now()}, "key-abc")
	require.NoError(t, err)

	assert.Equal(t, "sess-1", resp.ID)
	assert.Equal(t, "/api/v1/sessions", gotPath)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "key-abc", gotKey)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "Leg Day", gotBody.Name)
}

func TestCreateExerciseLogPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(LogResponse{ID: "log-1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	resp, err := c.CreateExerciseLog(context.Background(), "sess-1", CreateLogRequest{ExerciseID: "ex-squat", Name: "Back Squat"}, "k")
	require.NoError(t, err)
	assert.Equal(t, "log-1", resp.ID)
	assert.Equal(t, "/api/v1/sessions/sess-1/exercises", gotPath)
}

func TestAppendSetReportsPR(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(SetResponse{ID: "set-1", IsPR: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	resp, err := c.AppendSet(context.Background(), "sess-1", "log-1", AppendSetRequest{SetNumber: 1, Weight: 100, Reps: 5, Completed: true}, "k")
	require.NoError(t, err)
	assert.True(t, resp.IsPR)
	assert.Equal(t, "/api/v1/sessions/sess-1/logs/log-1/sets", gotPath)
}

func TestCancelSessionUsesDelete(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	require.NoError(t, c.CancelSession(context.Background(), "sess-1", "k"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/v1/sessions/sess-1", gotPath)
}

func TestNon2xxBecomesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	_, err := c.StartSession(context.Background(), StartSessionRequest{Name: "x"}, "k")
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "boom", se.Body)
	assert.False(t, IsAuthError(err))
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(&StatusError{Code: http.StatusUnauthorized}))
	assert.True(t, IsAuthError(&StatusError{Code: http.StatusForbidden}))
	assert.False(t, IsAuthError(&StatusError{Code: http.StatusConflict}))
	assert.False(t, IsAuthError(context.DeadlineExceeded))

	// Wrapped errors from client methods still classify.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "stale")
	_, err := c.StartSession(context.Background(), StartSessionRequest{Name: "x"}, "k")
	assert.True(t, IsAuthError(err))
}

func TestPingMeasuresLatency(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	rtt, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/health", gotPath)
	assert.Greater(t, rtt, time.Duration(0))
}

func TestPingFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Ping(context.Background())
	require.Error(t, err)
}

func TestPingFailsWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refused from here on

	c := NewClient(srv.URL, "")
	_, err := c.Ping(context.Background())
	require.Error(t, err)
}
