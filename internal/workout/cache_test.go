// ABOUTME: Tests for read-through caching of workouts and exercise history.
// ABOUTME: Online fetches refresh the cache; offline reads serve stale data.
package workout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/lift/internal/api"
	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/state"
	"github.com/harperreed/lift/internal/store"
	syncmgr "github.com/harperreed/lift/internal/sync"
)

type cacheFixture struct {
	*fixture
	workouts  map[string]*api.WorkoutSnapshot
	histories map[string]*api.HistorySnapshot
}

func newCacheFixture(t *testing.T) *cacheFixture {
	t.Helper()
	cf := &cacheFixture{
		workouts:  make(map[string]*api.WorkoutSnapshot),
		histories: make(map[string]*api.HistorySnapshot),
	}
	cf.fixture = newReadFixture(t, cf.workouts, cf.histories)
	return cf
}

// newReadFixture wires the stack over a server that answers the read
// endpoints from the supplied maps. Unknown paths 404 so misses fall back
// to the cache.
func newReadFixture(t *testing.T, workouts map[string]*api.WorkoutSnapshot, histories map[string]*api.HistorySnapshot) *fixture {
	t.Helper()
	f := &fixture{up: true}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		up := f.up
		f.mu.Unlock()
		if !up {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v1/workouts/"):
			date := strings.TrimPrefix(r.URL.Path, "/api/v1/workouts/")
			snap, ok := workouts[date]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(snap)
		case strings.HasPrefix(r.URL.Path, "/api/v1/exercises/"):
			id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v1/exercises/"), "/history")
			snap, ok := histories[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(snap)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	db, err := store.Open(filepath.Join(t.TempDir(), "lift.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st := state.New(db)
	require.NoError(t, st.Load())

	client := api.NewClient(srv.URL, "tok")
	f.svc = NewService(st, db, client, syncmgr.New(st, db, client, nil))
	f.state = st
	f.db = db
	f.mgr = f.svc.mgr
	return f
}

func TestWorkoutForDateRefreshesCacheWhenOnline(t *testing.T) {
	cf := newCacheFixture(t)
	workoutID := uuid.New()
	cf.workouts["2026-08-28"] = &api.WorkoutSnapshot{
		ID:   workoutID.String(),
		Date: "2026-08-28",
		Name: "Leg Day",
		Exercises: []api.ExerciseSnapshot{
			{ID: "ex-squat", Name: "Back Squat", MuscleGroup: "legs", TargetSets: 5, TargetReps: 5},
		},
	}

	got, err := cf.svc.WorkoutForDate(context.Background(), "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, workoutID, got.ID)
	assert.Equal(t, "Leg Day", got.Name)
	require.Len(t, got.Exercises, 1)

	// The fetch also populated the durable cache.
	cached, err := cf.db.GetCachedWorkout("2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, "Leg Day", cached.Name)
	ex, err := cf.db.GetCachedExercise("ex-squat")
	require.NoError(t, err)
	assert.Equal(t, "Back Squat", ex.Name)
}

func TestWorkoutForDateServesStaleWhenOffline(t *testing.T) {
	cf := newCacheFixture(t)
	cf.workouts["2026-08-28"] = &api.WorkoutSnapshot{ID: uuid.NewString(), Date: "2026-08-28", Name: "Leg Day"}

	_, err := cf.svc.WorkoutForDate(context.Background(), "2026-08-28")
	require.NoError(t, err)

	cf.goOffline()
	got, err := cf.svc.WorkoutForDate(context.Background(), "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, "Leg Day", got.Name)
}

func TestWorkoutForDateMissWhileOffline(t *testing.T) {
	cf := newCacheFixture(t)
	cf.goOffline()

	_, err := cf.svc.WorkoutForDate(context.Background(), "2026-08-28")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExerciseHistoryRoundTrip(t *testing.T) {
	cf := newCacheFixture(t)
	cf.histories["ex-squat"] = &api.HistorySnapshot{
		ExerciseID: "ex-squat",
		Entries: []api.HistoryEntrySnapshot{
			{Date: "2026-08-21", BestWeight: 120, BestReps: 5},
			{Date: "2026-08-14", BestWeight: 115, BestReps: 5},
		},
	}

	got, err := cf.svc.ExerciseHistory(context.Background(), "ex-squat")
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, float64(120), got.Entries[0].BestWeight)

	cf.goOffline()
	stale, err := cf.svc.ExerciseHistory(context.Background(), "ex-squat")
	require.NoError(t, err)
	assert.Equal(t, got.Entries, stale.Entries)
	assert.IsType(t, &models.CachedHistory{}, stale)
}
