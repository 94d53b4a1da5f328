// ABOUTME: Opportunistic read-through caching for workouts and history.
// ABOUTME: Online fetches refresh the cache; failures serve the stale copy.
package workout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/lift/internal/api"
	"github.com/harperreed/lift/internal/models"
)

// WorkoutForDate returns the scheduled workout for a date, refreshing the
// cache when online and serving the cached snapshot otherwise.
func (s *Service) WorkoutForDate(ctx context.Context, date string) (*models.CachedWorkout, error) {
	if s.state.IsOnline() {
		snap, err := s.client.WorkoutForDate(ctx, date)
		if err == nil {
			cached := cachedWorkoutFrom(snap)
			if err := s.db.PutCachedWorkout(cached); err != nil {
				return nil, err
			}
			for i := range cached.Exercises {
				if err := s.db.PutCachedExercise(&cached.Exercises[i]); err != nil {
					return nil, err
				}
			}
			return cached, nil
		}
	}
	return s.db.GetCachedWorkout(date)
}

// ExerciseHistory returns past performance for an exercise, stale if offline.
func (s *Service) ExerciseHistory(ctx context.Context, exerciseID string) (*models.CachedHistory, error) {
	if s.state.IsOnline() {
		snap, err := s.client.ExerciseHistory(ctx, exerciseID)
		if err == nil {
			cached := &models.CachedHistory{
				ExerciseID: snap.ExerciseID,
				FetchedAt:  time.Now().UTC(),
			}
			for _, e := range snap.Entries {
				cached.Entries = append(cached.Entries, models.HistoryEntry{
					Date:       e.Date,
					BestWeight: e.BestWeight,
					BestReps:   e.BestReps,
				})
			}
			if err := s.db.PutCachedHistory(cached); err != nil {
				return nil, err
			}
			return cached, nil
		}
	}
	return s.db.GetCachedHistory(exerciseID)
}

func cachedWorkoutFrom(snap *api.WorkoutSnapshot) *models.CachedWorkout {
	id, _ := uuid.Parse(snap.ID)
	cached := &models.CachedWorkout{
		ID:        id,
		Date:      snap.Date,
		Name:      snap.Name,
		FetchedAt: time.Now().UTC(),
	}
	for _, e := range snap.Exercises {
		cached.Exercises = append(cached.Exercises, models.CachedExercise{
			ID:          e.ID,
			Name:        e.Name,
			MuscleGroup: e.MuscleGroup,
			TargetSets:  e.TargetSets,
			TargetReps:  e.TargetReps,
		})
	}
	return cached
}
