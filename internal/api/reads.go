// ABOUTME: Read endpoints used to populate the local caches while online.
// ABOUTME: These calls are best-effort; callers fall back to stale cache.
package api

import (
	"context"
	"fmt"
	"net/http"
)

// WorkoutSnapshot is the server's scheduled workout for one date.
type WorkoutSnapshot struct {
	ID        string             `json:"id"`
	Date      string             `json:"date"`
	Name      string             `json:"name"`
	Exercises []ExerciseSnapshot `json:"exercises"`
}

// ExerciseSnapshot is one catalog exercise within a workout.
type ExerciseSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group,omitempty"`
	TargetSets  int    `json:"target_sets,omitempty"`
	TargetReps  int    `json:"target_reps,omitempty"`
}

// HistorySnapshot is past performance for one exercise.
type HistorySnapshot struct {
	ExerciseID string                 `json:"exercise_id"`
	Entries    []HistoryEntrySnapshot `json:"entries"`
}

// HistoryEntrySnapshot is one past session's best effort.
type HistoryEntrySnapshot struct {
	Date       string  `json:"date"`
	BestWeight float64 `json:"best_weight"`
	BestReps   int     `json:"best_reps"`
}

// WorkoutForDate fetches the scheduled workout for a YYYY-MM-DD date.
func (c *Client) WorkoutForDate(ctx context.Context, date string) (*WorkoutSnapshot, error) {
	var out WorkoutSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts/"+date, nil, "", &out); err != nil {
		return nil, fmt.Errorf("fetch workout: %w", err)
	}
	return &out, nil
}

// ExerciseHistory fetches past performance for an exercise.
func (c *Client) ExerciseHistory(ctx context.Context, exerciseID string) (*HistorySnapshot, error) {
	var out HistorySnapshot
	if err := c.do(ctx, http.MethodGet, "/api/v1/exercises/"+exerciseID+"/history", nil, "", &out); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return &out, nil
}
