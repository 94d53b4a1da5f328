// ABOUTME: WorkoutSession, ExerciseLog, and SetEntry local mirror models.
// ABOUTME: Session ids may be client-generated temp ids until the server acks.
package models

import (
	"fmt"
	"strings"
	"time"
)

// TempIDPrefix marks client-generated placeholder ids.
const TempIDPrefix = "temp_"

// IsTempID reports whether id is a client-generated placeholder
// that has not yet been acknowledged by the server.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// NewTempID builds a temp id from a persisted counter and a wall-clock
// component, so ids stay unique across process restarts.
func NewTempID(counter uint64, now time.Time) string {
	return fmt.Sprintf("%s%d_%d", TempIDPrefix, counter, now.UnixMilli())
}

// WorkoutSession is the local mirror of an in-progress workout.
// At most one active instance exists at a time.
type WorkoutSession struct {
	ID             string     `json:"id"` // temp or server-issued
	Name           string     `json:"name"`
	StartTime      time.Time  `json:"start_time"`
	PausedAt       *time.Time `json:"paused_at,omitempty"`
	TotalPausedSec int        `json:"total_paused_sec"`
	IsOffline      bool       `json:"is_offline"`
}

// NewSession creates a session mirror starting now.
func NewSession(id, name string) *WorkoutSession {
	return &WorkoutSession{
		ID:        id,
		Name:      name,
		StartTime: time.Now(),
	}
}

// IsPaused reports whether the session is currently paused.
func (s *WorkoutSession) IsPaused() bool {
	return s.PausedAt != nil
}

// SetEntry is one completed (or attempted) set within an exercise log.
// Entries are append-only within a log.
type SetEntry struct {
	SetNumber int     `json:"set_number"` // 1-based
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Completed bool    `json:"completed"`
	IsPR      bool    `json:"is_pr"`
}

// ExerciseLog groups the sets performed for one exercise in a session.
type ExerciseLog struct {
	ID         string     `json:"id"` // temp or server-issued
	SessionID  string     `json:"session_id"`
	ExerciseID string     `json:"exercise_id"`
	Name       string     `json:"name"`
	Sets       []SetEntry `json:"sets"`
}

// AppendSet appends a set, assigning the next 1-based set number.
func (l *ExerciseLog) AppendSet(weight float64, reps int, completed bool) SetEntry {
	entry := SetEntry{
		SetNumber: len(l.Sets) + 1,
		Weight:    weight,
		Reps:      reps,
		Completed: completed,
	}
	l.Sets = append(l.Sets, entry)
	return entry
}
