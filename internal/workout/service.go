// ABOUTME: Workout operations facade: online-first with offline fallback.
// ABOUTME: Callers never branch on connectivity; offline capture is the net.
package workout

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/lift/internal/api"
	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/state"
	"github.com/harperreed/lift/internal/store"
	syncmgr "github.com/harperreed/lift/internal/sync"
)

// Result is embedded in every operation's return value.
type Result struct {
	Success bool `json:"success"`
	Offline bool `json:"offline"`
}

// StartResult is returned by StartWorkout.
type StartResult struct {
	Result
	Session *models.WorkoutSession `json:"session"`
}

// LogResult is returned by LogExercise.
type LogResult struct {
	Result
	Log *models.ExerciseLog `json:"log"`
}

// SetResult is returned by CompleteSet.
type SetResult struct {
	Result
	Set  models.SetEntry `json:"set"`
	IsPR bool            `json:"is_pr"`
}

// SetData carries the caller-supplied fields of one set.
type SetData struct {
	Weight    float64
	Reps      int
	Completed bool
}

// CompletionData carries the caller-supplied fields of a finished workout.
type CompletionData struct {
	DurationSec int
	Notes       string
}

// Service is the single entry point the rest of the application calls.
type Service struct {
	state  *state.Store
	db     *store.Store
	client *api.Client
	mgr    *syncmgr.Manager
}

// NewService wires the facade over the state store, durable store,
// transport, and sync manager.
func NewService(st *state.Store, db *store.Store, client *api.Client, mgr *syncmgr.Manager) *Service {
	return &Service{state: st, db: db, client: client, mgr: mgr}
}

// online reports whether a direct network call should be attempted for the
// given ids: believed online and no id still waiting on a server identity.
func (s *Service) online(ids ...string) bool {
	if !s.state.IsOnline() {
		return false
	}
	for _, id := range ids {
		if models.IsTempID(id) {
			return false
		}
	}
	return true
}

// StartWorkout starts a session, online first, offline fallback.
func (s *Service) StartWorkout(ctx context.Context, name string) (*StartResult, error) {
	startTime := time.Now()

	if s.online() {
		resp, err := s.client.StartSession(ctx, api.StartSessionRequest{
			Name:      name,
			StartTime: startTime,
		}, ulid.Make().String())
		if err == nil {
			sess := &models.WorkoutSession{
				ID:        resp.ID,
				Name:      name,
				StartTime: startTime,
			}
			if err := s.state.SetActiveSession(sess); err != nil {
				return nil, err
			}
			return &StartResult{Result: Result{Success: true}, Session: sess}, nil
		}
	}

	sess, err := s.state.StartOfflineSession(name, startTime)
	if err != nil {
		return nil, err
	}
	return &StartResult{Result: Result{Success: true, Offline: true}, Session: sess}, nil
}

// LogExercise adds an exercise log to a session.
func (s *Service) LogExercise(ctx context.Context, sessionID, exerciseID, name string) (*LogResult, error) {
	realSession := s.state.GetRealID(sessionID)

	if s.online(realSession) {
		resp, err := s.client.CreateExerciseLog(ctx, realSession, api.CreateLogRequest{
			ExerciseID: exerciseID,
			Name:       name,
		}, ulid.Make().String())
		if err == nil {
			l := &models.ExerciseLog{
				ID:         resp.ID,
				SessionID:  realSession,
				ExerciseID: exerciseID,
				Name:       name,
			}
			if err := s.state.UpsertLog(l); err != nil {
				return nil, err
			}
			return &LogResult{Result: Result{Success: true}, Log: l}, nil
		}
	}

	l, err := s.state.LogExerciseOffline(realSession, exerciseID, name)
	if err != nil {
		return nil, err
	}
	return &LogResult{Result: Result{Success: true, Offline: true}, Log: l}, nil
}

// CompleteSet records one set against a log.
func (s *Service) CompleteSet(ctx context.Context, sessionID, logID, exerciseID string, data SetData) (*SetResult, error) {
	realSession := s.state.GetRealID(sessionID)
	realLog := s.state.GetRealID(logID)

	if s.online(realSession, realLog) {
		mirror := s.state.LogForExercise(exerciseID)
		setNumber := 1
		if mirror != nil {
			setNumber = len(mirror.Sets) + 1
		}
		resp, err := s.client.AppendSet(ctx, realSession, realLog, api.AppendSetRequest{
			SetNumber: setNumber,
			Weight:    data.Weight,
			Reps:      data.Reps,
			Completed: data.Completed,
		}, ulid.Make().String())
		if err == nil {
			entry := models.SetEntry{
				SetNumber: setNumber,
				Weight:    data.Weight,
				Reps:      data.Reps,
				Completed: data.Completed,
				IsPR:      resp.IsPR,
			}
			if mirror == nil {
				mirror = &models.ExerciseLog{ID: realLog, SessionID: realSession, ExerciseID: exerciseID}
			}
			mirror.Sets = append(mirror.Sets, entry)
			if err := s.state.UpsertLog(mirror); err != nil {
				return nil, err
			}
			return &SetResult{Result: Result{Success: true}, Set: entry, IsPR: resp.IsPR}, nil
		}
	}

	entry, err := s.state.LogSetOffline(realSession, realLog, exerciseID, data.Weight, data.Reps, data.Completed)
	if err != nil {
		return nil, err
	}
	return &SetResult{Result: Result{Success: true, Offline: true}, Set: entry}, nil
}

// TogglePause pauses or resumes the active session.
func (s *Service) TogglePause(ctx context.Context, sessionID string, paused bool, elapsedSec int) (*Result, error) {
	realSession := s.state.GetRealID(sessionID)

	if s.online(realSession) {
		req := api.PauseRequest{ElapsedSec: elapsedSec}
		var err error
		if paused {
			_, err = s.client.PauseSession(ctx, realSession, req, ulid.Make().String())
		} else {
			_, err = s.client.ResumeSession(ctx, realSession, req, ulid.Make().String())
		}
		if err == nil {
			if err := s.state.UpdateSession(func(sess *models.WorkoutSession) {
				if paused {
					now := time.Now()
					sess.PausedAt = &now
				} else {
					if sess.PausedAt != nil {
						sess.TotalPausedSec += int(time.Since(*sess.PausedAt).Seconds())
					}
					sess.PausedAt = nil
				}
			}); err != nil {
				return nil, err
			}
			return &Result{Success: true}, nil
		}
	}

	if err := s.state.TogglePauseOffline(realSession, paused, elapsedSec); err != nil {
		return nil, err
	}
	return &Result{Success: true, Offline: true}, nil
}

// EndWorkout completes the session. The local mirror is cleared either way.
func (s *Service) EndWorkout(ctx context.Context, sessionID string, data CompletionData) (*Result, error) {
	realSession := s.state.GetRealID(sessionID)

	if s.online(realSession) {
		err := s.client.CompleteSession(ctx, realSession, api.CompleteRequest{
			CompletedAt: time.Now().UTC(),
			DurationSec: data.DurationSec,
			Notes:       data.Notes,
		}, ulid.Make().String())
		if err == nil {
			if err := s.state.ClearActiveSession(realSession); err != nil {
				return nil, err
			}
			return &Result{Success: true}, nil
		}
	}

	if err := s.state.CompleteWorkoutOffline(realSession, data.DurationSec, data.Notes); err != nil {
		return nil, err
	}
	return &Result{Success: true, Offline: true}, nil
}

// CancelWorkout discards the session. The local mirror is cleared either way.
func (s *Service) CancelWorkout(ctx context.Context, sessionID string) (*Result, error) {
	realSession := s.state.GetRealID(sessionID)

	if s.online(realSession) {
		err := s.client.CancelSession(ctx, realSession, ulid.Make().String())
		if err == nil {
			if err := s.state.ClearActiveSession(realSession); err != nil {
				return nil, err
			}
			return &Result{Success: true}, nil
		}
	}

	if err := s.state.CancelWorkoutOffline(realSession); err != nil {
		return nil, err
	}
	return &Result{Success: true, Offline: true}, nil
}

// SyncNow forces an immediate drain after a fresh reachability probe.
func (s *Service) SyncNow(ctx context.Context) error {
	return s.mgr.SyncNow(ctx)
}

// Status returns the current observable state.
func (s *Service) Status() state.Snapshot {
	return s.state.Snapshot()
}
