// ABOUTME: Tests for the offline state store.
// ABOUTME: Covers temp id bookkeeping, offline actions, and rehydration.
package state

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/store"
)

func setupTestState(t *testing.T) (*Store, *store.Store) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "lift.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st := New(db)
	require.NoError(t, st.Load())
	return st, db
}

func TestGenerateTempIDUniqueAndPrefixed(t *testing.T) {
	st, _ := setupTestState(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := st.GenerateTempID()
		require.NoError(t, err)
		assert.True(t, models.IsTempID(id))
		assert.False(t, seen[id], "temp id %s reused", id)
		seen[id] = true
	}
}

func TestGetRealIDIsPermissive(t *testing.T) {
	st, _ := setupTestState(t)

	// Unknown ids come back unchanged so call sites never branch.
	assert.Equal(t, "srv-sess-1", st.GetRealID("srv-sess-1"))
	assert.Equal(t, "temp_9_9", st.GetRealID("temp_9_9"))

	require.NoError(t, st.MapTempID("temp_9_9", "srv-sess-1"))
	assert.Equal(t, "srv-sess-1", st.GetRealID("temp_9_9"))
}

func TestMapTempIDPromotesSessionMirror(t *testing.T) {
	st, db := setupTestState(t)

	sess, err := st.StartOfflineSession("Leg Day", time.Now())
	require.NoError(t, err)
	require.True(t, models.IsTempID(sess.ID))

	_, err = st.LogExerciseOffline(sess.ID, "ex-squat", "Back Squat")
	require.NoError(t, err)

	require.NoError(t, st.MapTempID(sess.ID, "srv-sess-1"))

	got := st.Session()
	require.NotNil(t, got)
	assert.Equal(t, "srv-sess-1", got.ID)

	// Logs were re-keyed under the real session id in the durable store.
	logs, err := db.ListExerciseLogs("srv-sess-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "srv-sess-1", logs[0].SessionID)
}

func TestStartOfflineSessionQueuesOneItem(t *testing.T) {
	st, db := setupTestState(t)

	sess, err := st.StartOfflineSession("Leg Day", time.Now())
	require.NoError(t, err)
	assert.True(t, sess.IsOffline)
	assert.True(t, models.IsTempID(sess.ID))

	items, err := db.ListQueue()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.SyncStartWorkout, items[0].Type)
	assert.Equal(t, sess.ID, items[0].TempID)
	assert.NotEmpty(t, items[0].IdempotencyKey)

	var payload models.StartWorkoutPayload
	require.NoError(t, json.Unmarshal(items[0].Payload, &payload))
	assert.Equal(t, "Leg Day", payload.Name)

	assert.Equal(t, 1, st.Snapshot().PendingSyncCount)
}

func TestOfflineActionsQueueInOrder(t *testing.T) {
	st, db := setupTestState(t)

	sess, err := st.StartOfflineSession("Leg Day", time.Now())
	require.NoError(t, err)

	l, err := st.LogExerciseOffline(sess.ID, "ex-squat", "Back Squat")
	require.NoError(t, err)
	require.True(t, models.IsTempID(l.ID))

	entry, err := st.LogSetOffline(sess.ID, l.ID, "ex-squat", 100, 5, true)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.SetNumber)

	require.NoError(t, st.TogglePauseOffline(sess.ID, true, 300))
	require.NoError(t, st.TogglePauseOffline(sess.ID, false, 300))

	items, err := db.ListQueue()
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, models.SyncStartWorkout, items[0].Type)
	assert.Equal(t, models.SyncLogExercise, items[1].Type)
	assert.Equal(t, models.SyncLogSet, items[2].Type)
	assert.Equal(t, models.SyncPauseWorkout, items[3].Type)
	assert.Equal(t, models.SyncResumeWorkout, items[4].Type)

	assert.Equal(t, 5, st.Snapshot().PendingSyncCount)
}

func TestCompleteWorkoutOfflineClearsLocalState(t *testing.T) {
	st, db := setupTestState(t)

	sess, err := st.StartOfflineSession("Leg Day", time.Now())
	require.NoError(t, err)
	_, err = st.LogExerciseOffline(sess.ID, "ex-squat", "Back Squat")
	require.NoError(t, err)

	require.NoError(t, st.CompleteWorkoutOffline(sess.ID, 1800, "done"))

	// Local collections cleared even though nothing has synced yet.
	assert.Nil(t, st.Session())
	_, err = db.GetActiveSession()
	assert.ErrorIs(t, err, store.ErrNotFound)
	logs, err := db.ListExerciseLogs(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	// The intents survive in the queue.
	items, err := db.ListQueue()
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, models.SyncCompleteWorkout, items[2].Type)
}

func TestCancelWorkoutOfflineClearsLocalState(t *testing.T) {
	st, db := setupTestState(t)

	sess, err := st.StartOfflineSession("Leg Day", time.Now())
	require.NoError(t, err)
	require.NoError(t, st.CancelWorkoutOffline(sess.ID))

	assert.Nil(t, st.Session())
	items, err := db.ListQueue()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.SyncCancelWorkout, items[1].Type)
}

func TestLoadRehydratesFromDurableStore(t *testing.T) {
	st, db := setupTestState(t)

	sess, err := st.StartOfflineSession("Leg Day", time.Now())
	require.NoError(t, err)
	_, err = st.LogExerciseOffline(sess.ID, "ex-squat", "Back Squat")
	require.NoError(t, err)
	_, err = st.LogSetOffline(sess.ID, "whatever", "ex-squat", 100, 5, true)
	require.NoError(t, err)
	require.NoError(t, st.MapTempID("temp_x_1", "srv-1"))

	// A fresh state store over the same db sees the same world.
	st2 := New(db)
	require.NoError(t, st2.Load())

	got := st2.Session()
	require.NotNil(t, got)
	assert.Equal(t, sess.ID, got.ID)

	l := st2.LogForExercise("ex-squat")
	require.NotNil(t, l)
	assert.Len(t, l.Sets, 1)

	assert.Equal(t, "srv-1", st2.GetRealID("temp_x_1"))
	assert.Equal(t, 3, st2.Snapshot().PendingSyncCount)
}

func TestSubscribeNotifiesAndDisposes(t *testing.T) {
	st, _ := setupTestState(t)

	var got []Snapshot
	dispose := st.Subscribe(func(snap Snapshot) {
		got = append(got, snap)
	})

	st.SetConnectivity(false, QualityOffline)
	require.Len(t, got, 1)
	assert.False(t, got[0].IsOnline)
	assert.Equal(t, QualityOffline, got[0].ConnectionQuality)

	dispose()
	st.SetConnectivity(true, QualityGood)
	assert.Len(t, got, 1)
}

func TestTogglePauseOfflineTracksPausedTime(t *testing.T) {
	st, _ := setupTestState(t)

	sess, err := st.StartOfflineSession("Leg Day", time.Now())
	require.NoError(t, err)

	require.NoError(t, st.TogglePauseOffline(sess.ID, true, 60))
	got := st.Session()
	require.NotNil(t, got.PausedAt)

	require.NoError(t, st.TogglePauseOffline(sess.ID, false, 60))
	got = st.Session()
	assert.Nil(t, got.PausedAt)
	assert.GreaterOrEqual(t, got.TotalPausedSec, 0)
}

func TestTogglePauseOfflineWithoutSession(t *testing.T) {
	st, _ := setupTestState(t)
	err := st.TogglePauseOffline("sess-1", true, 0)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}
