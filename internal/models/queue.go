// ABOUTME: PendingSyncItem and the sync type enum for the durable intent log.
// ABOUTME: Items record not-yet-confirmed operations plus retry bookkeeping.
package models

import (
	"encoding/json"
	"time"
)

// SyncType enumerates the operations the pending queue can carry.
type SyncType string

const (
	SyncStartWorkout    SyncType = "START_WORKOUT"
	SyncLogExercise     SyncType = "LOG_EXERCISE"
	SyncLogSet          SyncType = "LOG_SET"
	SyncPauseWorkout    SyncType = "PAUSE_WORKOUT"
	SyncResumeWorkout   SyncType = "RESUME_WORKOUT"
	SyncCompleteWorkout SyncType = "COMPLETE_WORKOUT"
	SyncCancelWorkout   SyncType = "CANCEL_WORKOUT"
)

// Sync item statuses.
const (
	StatusPending = "pending"
	StatusFailed  = "failed"
)

// PendingSyncItem is one durable record of a queued network operation.
type PendingSyncItem struct {
	ID             uint64          `json:"id"` // autoincrement, assigned by the store
	Type           SyncType        `json:"type"`
	Payload        json.RawMessage `json:"payload"`
	TempID         string          `json:"temp_id,omitempty"` // set when this item creates an entity
	IdempotencyKey string          `json:"idempotency_key"`
	Status         string          `json:"status"`
	RetryCount     int             `json:"retry_count"`
	LastError      string          `json:"last_error,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// Payload shapes per sync type. Ids inside payloads may be temp ids; the
// sync manager resolves them against the temp-id map at processing time.

type StartWorkoutPayload struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
}

type LogExercisePayload struct {
	SessionID  string `json:"session_id"`
	ExerciseID string `json:"exercise_id"`
	Name       string `json:"name"`
}

type LogSetPayload struct {
	SessionID  string  `json:"session_id"`
	LogID      string  `json:"log_id"`
	ExerciseID string  `json:"exercise_id"`
	SetNumber  int     `json:"set_number"`
	Weight     float64 `json:"weight"`
	Reps       int     `json:"reps"`
	Completed  bool    `json:"completed"`
}

type PausePayload struct {
	SessionID  string `json:"session_id"`
	Paused     bool   `json:"paused"`
	ElapsedSec int    `json:"elapsed_sec"`
}

type CompletePayload struct {
	SessionID   string    `json:"session_id"`
	CompletedAt time.Time `json:"completed_at"`
	DurationSec int       `json:"duration_sec"`
	Notes       string    `json:"notes,omitempty"`
}

type CancelPayload struct {
	SessionID string `json:"session_id"`
}
