// ABOUTME: MCP tool implementations for workout operations.
// ABOUTME: Every tool goes through the facade, so offline capture applies.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/lift/internal/workout"
)

func (s *Server) registerTools() {
	// start_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "start_workout",
		Description: "Start a new workout session (works offline)",
	}, s.handleStartWorkout)

	// log_exercise
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_exercise",
		Description: "Add an exercise to the active workout session",
	}, s.handleLogExercise)

	// complete_set
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "complete_set",
		Description: "Record a completed set for an exercise",
	}, s.handleCompleteSet)

	// toggle_pause
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "toggle_pause",
		Description: "Pause or resume the active workout session",
	}, s.handleTogglePause)

	// end_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "end_workout",
		Description: "Complete the active workout session",
	}, s.handleEndWorkout)

	// cancel_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "cancel_workout",
		Description: "Discard the active workout session",
	}, s.handleCancelWorkout)

	// sync_now
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "sync_now",
		Description: "Force an immediate sync of queued workout actions",
	}, s.handleSyncNow)

	// sync_status
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "sync_status",
		Description: "Show connectivity, pending queue size, and last sync time",
	}, s.handleSyncStatus)
}

// Tool input/output types

type startWorkoutInput struct {
	Name string `json:"name" jsonschema:"Workout name (e.g. Leg Day)"`
}

type sessionOutput struct {
	SessionID string `json:"session_id"`
	Offline   bool   `json:"offline"`
	Message   string `json:"message"`
}

type logExerciseInput struct {
	SessionID  string `json:"session_id" jsonschema:"Active session id"`
	ExerciseID string `json:"exercise_id" jsonschema:"Catalog exercise id"`
	Name       string `json:"name" jsonschema:"Exercise display name"`
}

type logOutput struct {
	LogID   string `json:"log_id"`
	Offline bool   `json:"offline"`
	Message string `json:"message"`
}

type completeSetInput struct {
	SessionID  string  `json:"session_id" jsonschema:"Active session id"`
	LogID      string  `json:"log_id" jsonschema:"Exercise log id"`
	ExerciseID string  `json:"exercise_id" jsonschema:"Catalog exercise id"`
	Weight     float64 `json:"weight" jsonschema:"Weight used"`
	Reps       int     `json:"reps" jsonschema:"Repetitions completed"`
}

type setOutput struct {
	SetNumber int    `json:"set_number"`
	IsPR      bool   `json:"is_pr"`
	Offline   bool   `json:"offline"`
	Message   string `json:"message"`
}

type togglePauseInput struct {
	SessionID  string `json:"session_id" jsonschema:"Active session id"`
	Paused     bool   `json:"paused" jsonschema:"true to pause; false to resume"`
	ElapsedSec int    `json:"elapsed_sec,omitempty" jsonschema:"Elapsed workout seconds so far"`
}

type endWorkoutInput struct {
	SessionID   string `json:"session_id" jsonschema:"Active session id"`
	DurationSec int    `json:"duration_sec,omitempty" jsonschema:"Total workout duration in seconds"`
	Notes       string `json:"notes,omitempty" jsonschema:"Optional workout notes"`
}

type cancelWorkoutInput struct {
	SessionID string `json:"session_id" jsonschema:"Active session id"`
}

type simpleOutput struct {
	Offline bool   `json:"offline"`
	Message string `json:"message"`
}

type syncStatusOutput struct {
	Online           bool   `json:"online"`
	Quality          string `json:"quality"`
	Syncing          bool   `json:"syncing"`
	PendingSyncCount int    `json:"pending_sync_count"`
	LastSyncTime     string `json:"last_sync_time,omitempty"`
	SyncError        string `json:"sync_error,omitempty"`
}

// Tool handlers

func (s *Server) handleStartWorkout(ctx context.Context, req *mcp.CallToolRequest, input startWorkoutInput) (*mcp.CallToolResult, sessionOutput, error) {
	res, err := s.svc.StartWorkout(ctx, input.Name)
	if err != nil {
		return nil, sessionOutput{}, fmt.Errorf("failed to start workout: %w", err)
	}

	msg := fmt.Sprintf("Started %q", input.Name)
	if res.Offline {
		msg += " (offline, will sync when connectivity returns)"
	}
	return nil, sessionOutput{
		SessionID: res.Session.ID,
		Offline:   res.Offline,
		Message:   msg,
	}, nil
}

func (s *Server) handleLogExercise(ctx context.Context, req *mcp.CallToolRequest, input logExerciseInput) (*mcp.CallToolResult, logOutput, error) {
	res, err := s.svc.LogExercise(ctx, input.SessionID, input.ExerciseID, input.Name)
	if err != nil {
		return nil, logOutput{}, fmt.Errorf("failed to log exercise: %w", err)
	}

	return nil, logOutput{
		LogID:   res.Log.ID,
		Offline: res.Offline,
		Message: fmt.Sprintf("Logged %s", input.Name),
	}, nil
}

func (s *Server) handleCompleteSet(ctx context.Context, req *mcp.CallToolRequest, input completeSetInput) (*mcp.CallToolResult, setOutput, error) {
	res, err := s.svc.CompleteSet(ctx, input.SessionID, input.LogID, input.ExerciseID, workout.SetData{
		Weight:    input.Weight,
		Reps:      input.Reps,
		Completed: true,
	})
	if err != nil {
		return nil, setOutput{}, fmt.Errorf("failed to complete set: %w", err)
	}

	msg := fmt.Sprintf("Set %d: %.1f x %d", res.Set.SetNumber, input.Weight, input.Reps)
	if res.IsPR {
		msg += " — new PR!"
	}
	return nil, setOutput{
		SetNumber: res.Set.SetNumber,
		IsPR:      res.IsPR,
		Offline:   res.Offline,
		Message:   msg,
	}, nil
}

func (s *Server) handleTogglePause(ctx context.Context, req *mcp.CallToolRequest, input togglePauseInput) (*mcp.CallToolResult, simpleOutput, error) {
	res, err := s.svc.TogglePause(ctx, input.SessionID, input.Paused, input.ElapsedSec)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to toggle pause: %w", err)
	}

	msg := "Workout resumed"
	if input.Paused {
		msg = "Workout paused"
	}
	return nil, simpleOutput{Offline: res.Offline, Message: msg}, nil
}

func (s *Server) handleEndWorkout(ctx context.Context, req *mcp.CallToolRequest, input endWorkoutInput) (*mcp.CallToolResult, simpleOutput, error) {
	res, err := s.svc.EndWorkout(ctx, input.SessionID, workout.CompletionData{
		DurationSec: input.DurationSec,
		Notes:       input.Notes,
	})
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to end workout: %w", err)
	}

	return nil, simpleOutput{Offline: res.Offline, Message: "Workout completed"}, nil
}

func (s *Server) handleCancelWorkout(ctx context.Context, req *mcp.CallToolRequest, input cancelWorkoutInput) (*mcp.CallToolResult, simpleOutput, error) {
	res, err := s.svc.CancelWorkout(ctx, input.SessionID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to cancel workout: %w", err)
	}

	return nil, simpleOutput{Offline: res.Offline, Message: "Workout cancelled"}, nil
}

func (s *Server) handleSyncNow(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, syncStatusOutput, error) {
	if err := s.svc.SyncNow(ctx); err != nil {
		return nil, syncStatusOutput{}, fmt.Errorf("sync failed: %w", err)
	}
	return nil, s.statusOutput(), nil
}

func (s *Server) handleSyncStatus(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, syncStatusOutput, error) {
	return nil, s.statusOutput(), nil
}

func (s *Server) statusOutput() syncStatusOutput {
	snap := s.svc.Status()
	out := syncStatusOutput{
		Online:           snap.IsOnline,
		Quality:          string(snap.ConnectionQuality),
		Syncing:          snap.IsSyncing,
		PendingSyncCount: snap.PendingSyncCount,
		SyncError:        snap.SyncError,
	}
	if !snap.LastSyncTime.IsZero() {
		out.LastSyncTime = snap.LastSyncTime.Format("2006-01-02 15:04:05")
	}
	return out
}
