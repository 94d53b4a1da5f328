// ABOUTME: Offline fallback actions: optimistic local mutation plus one
// ABOUTME: queued intent per operation.
package state

import (
	"time"

	"github.com/harperreed/lift/internal/models"
)

// StartOfflineSession creates a session under a temp id, persists it, and
// queues a START_WORKOUT intent. Returns immediately with no network call.
func (s *Store) StartOfflineSession(name string, startTime time.Time) (*models.WorkoutSession, error) {
	tempID, err := s.GenerateTempID()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer func() {
		notify := s.notifyLocked()
		s.mu.Unlock()
		notify()
	}()

	sess := &models.WorkoutSession{
		ID:        tempID,
		Name:      name,
		StartTime: startTime,
		IsOffline: true,
	}
	if err := s.db.PutActiveSession(sess); err != nil {
		return nil, err
	}
	s.session = sess
	s.logs = make(map[string]*models.ExerciseLog)

	payload := models.StartWorkoutPayload{Name: name, StartTime: startTime}
	if err := s.enqueueLocked(models.SyncStartWorkout, payload, tempID); err != nil {
		return nil, err
	}

	copied := *sess
	return &copied, nil
}

// LogExerciseOffline adds an exercise log under a temp id and queues a
// LOG_EXERCISE intent. The session id may itself still be a temp id.
func (s *Store) LogExerciseOffline(sessionID, exerciseID, name string) (*models.ExerciseLog, error) {
	tempID, err := s.GenerateTempID()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer func() {
		notify := s.notifyLocked()
		s.mu.Unlock()
		notify()
	}()

	l := &models.ExerciseLog{
		ID:         tempID,
		SessionID:  sessionID,
		ExerciseID: exerciseID,
		Name:       name,
	}
	if err := s.db.PutExerciseLog(l); err != nil {
		return nil, err
	}
	s.logs[exerciseID] = l

	payload := models.LogExercisePayload{
		SessionID:  sessionID,
		ExerciseID: exerciseID,
		Name:       name,
	}
	if err := s.enqueueLocked(models.SyncLogExercise, payload, tempID); err != nil {
		return nil, err
	}

	copied := *l
	return &copied, nil
}

// LogSetOffline appends a set to the mirror log and queues a LOG_SET intent.
func (s *Store) LogSetOffline(sessionID, logID, exerciseID string, weight float64, reps int, completed bool) (models.SetEntry, error) {
	s.mu.Lock()
	defer func() {
		notify := s.notifyLocked()
		s.mu.Unlock()
		notify()
	}()

	l, ok := s.logs[exerciseID]
	if !ok {
		// A set can arrive for a log created on another path; mirror it.
		l = &models.ExerciseLog{ID: logID, SessionID: sessionID, ExerciseID: exerciseID}
		s.logs[exerciseID] = l
	}
	entry := l.AppendSet(weight, reps, completed)
	if err := s.db.PutExerciseLog(l); err != nil {
		return models.SetEntry{}, err
	}

	payload := models.LogSetPayload{
		SessionID:  sessionID,
		LogID:      logID,
		ExerciseID: exerciseID,
		SetNumber:  entry.SetNumber,
		Weight:     weight,
		Reps:       reps,
		Completed:  completed,
	}
	if err := s.enqueueLocked(models.SyncLogSet, payload, ""); err != nil {
		return models.SetEntry{}, err
	}
	return entry, nil
}

// TogglePauseOffline updates the pause state locally and queues a
// PAUSE_WORKOUT or RESUME_WORKOUT intent.
func (s *Store) TogglePauseOffline(sessionID string, paused bool, elapsedSec int) error {
	s.mu.Lock()
	defer func() {
		notify := s.notifyLocked()
		s.mu.Unlock()
		notify()
	}()

	if s.session == nil {
		return ErrNoActiveSession
	}
	if paused {
		now := time.Now()
		s.session.PausedAt = &now
	} else {
		if s.session.PausedAt != nil {
			s.session.TotalPausedSec += int(time.Since(*s.session.PausedAt).Seconds())
		}
		s.session.PausedAt = nil
	}
	if err := s.db.PutActiveSession(s.session); err != nil {
		return err
	}

	typ := models.SyncPauseWorkout
	if !paused {
		typ = models.SyncResumeWorkout
	}
	payload := models.PausePayload{SessionID: sessionID, Paused: paused, ElapsedSec: elapsedSec}
	return s.enqueueLocked(typ, payload, "")
}

// CompleteWorkoutOffline queues a COMPLETE_WORKOUT intent and clears the
// active-session and log collections regardless of eventual sync outcome.
func (s *Store) CompleteWorkoutOffline(sessionID string, durationSec int, notes string) error {
	payload := models.CompletePayload{
		SessionID:   sessionID,
		CompletedAt: time.Now().UTC(),
		DurationSec: durationSec,
		Notes:       notes,
	}
	return s.endSession(sessionID, models.SyncCompleteWorkout, payload)
}

// CancelWorkoutOffline queues a CANCEL_WORKOUT intent and clears the local
// session state.
func (s *Store) CancelWorkoutOffline(sessionID string) error {
	return s.endSession(sessionID, models.SyncCancelWorkout, models.CancelPayload{SessionID: sessionID})
}

func (s *Store) endSession(sessionID string, typ models.SyncType, payload any) error {
	s.mu.Lock()
	defer func() {
		notify := s.notifyLocked()
		s.mu.Unlock()
		notify()
	}()

	if err := s.enqueueLocked(typ, payload, ""); err != nil {
		return err
	}
	if err := s.db.ClearSession(sessionID); err != nil {
		return err
	}
	s.session = nil
	s.logs = make(map[string]*models.ExerciseLog)
	return nil
}

// MarkSetPR flags a set as a personal record once the server reports one.
// A no-op when the log or set is no longer mirrored locally.
func (s *Store) MarkSetPR(exerciseID string, setNumber int) error {
	s.mu.Lock()
	defer func() {
		notify := s.notifyLocked()
		s.mu.Unlock()
		notify()
	}()

	l, ok := s.logs[exerciseID]
	if !ok {
		return nil
	}
	for i := range l.Sets {
		if l.Sets[i].SetNumber == setNumber {
			l.Sets[i].IsPR = true
			return s.db.PutExerciseLog(l)
		}
	}
	return nil
}

// SetActiveSession mirrors a server-confirmed session (online path).
func (s *Store) SetActiveSession(sess *models.WorkoutSession) error {
	s.mu.Lock()
	defer func() {
		notify := s.notifyLocked()
		s.mu.Unlock()
		notify()
	}()

	if err := s.db.PutActiveSession(sess); err != nil {
		return err
	}
	copied := *sess
	s.session = &copied
	s.logs = make(map[string]*models.ExerciseLog)
	return nil
}

// UpdateSession applies a mutation to the active session mirror and
// persists the result.
func (s *Store) UpdateSession(mutate func(*models.WorkoutSession)) error {
	s.mu.Lock()
	defer func() {
		notify := s.notifyLocked()
		s.mu.Unlock()
		notify()
	}()

	if s.session == nil {
		return ErrNoActiveSession
	}
	mutate(s.session)
	return s.db.PutActiveSession(s.session)
}

// UpsertLog mirrors a server-confirmed exercise log (online path).
func (s *Store) UpsertLog(l *models.ExerciseLog) error {
	s.mu.Lock()
	defer func() {
		notify := s.notifyLocked()
		s.mu.Unlock()
		notify()
	}()

	if err := s.db.PutExerciseLog(l); err != nil {
		return err
	}
	copied := *l
	copied.Sets = append([]models.SetEntry(nil), l.Sets...)
	s.logs[l.ExerciseID] = &copied
	return nil
}

// ClearActiveSession drops the session mirror without queueing an intent
// (online path, where the terminal call already succeeded).
func (s *Store) ClearActiveSession(sessionID string) error {
	s.mu.Lock()
	defer func() {
		notify := s.notifyLocked()
		s.mu.Unlock()
		notify()
	}()

	if err := s.db.ClearSession(sessionID); err != nil {
		return err
	}
	s.session = nil
	s.logs = make(map[string]*models.ExerciseLog)
	return nil
}
