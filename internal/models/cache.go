// ABOUTME: Read-only cached snapshot models populated while online.
// ABOUTME: Served stale when the network is unavailable.
package models

import (
	"time"

	"github.com/google/uuid"
)

// CachedWorkout is a read-only snapshot of a scheduled workout, keyed by date.
type CachedWorkout struct {
	ID        uuid.UUID        `json:"id"`
	Date      string           `json:"date"` // YYYY-MM-DD
	Name      string           `json:"name"`
	Exercises []CachedExercise `json:"exercises,omitempty"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// CachedExercise is a read-only snapshot of a catalog exercise.
type CachedExercise struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group,omitempty"`
	TargetSets  int    `json:"target_sets,omitempty"`
	TargetReps  int    `json:"target_reps,omitempty"`
}

// CachedHistory is a read-only snapshot of past performance for one exercise.
type CachedHistory struct {
	ExerciseID string         `json:"exercise_id"`
	Entries    []HistoryEntry `json:"entries"`
	FetchedAt  time.Time      `json:"fetched_at"`
}

// HistoryEntry is one past session's best effort for an exercise.
type HistoryEntry struct {
	Date       string  `json:"date"`
	BestWeight float64 `json:"best_weight"`
	BestReps   int     `json:"best_reps"`
}
