// ABOUTME: Typed accessors for the cached-workout, exercise, session, log,
// ABOUTME: and history collections.
package store

import (
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/harperreed/lift/internal/models"
)

// PutCachedWorkout stores a workout snapshot keyed by its date.
func (s *Store) PutCachedWorkout(w *models.CachedWorkout) error {
	return s.putJSON(workoutPrefix+w.Date, w)
}

// GetCachedWorkout returns the cached workout for a YYYY-MM-DD date.
func (s *Store) GetCachedWorkout(date string) (*models.CachedWorkout, error) {
	var w models.CachedWorkout
	if err := s.getJSON(workoutPrefix+date, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// PutCachedExercise stores an exercise catalog snapshot.
func (s *Store) PutCachedExercise(e *models.CachedExercise) error {
	return s.putJSON(exercisePrefix+e.ID, e)
}

// GetCachedExercise returns a cached exercise by id.
func (s *Store) GetCachedExercise(id string) (*models.CachedExercise, error) {
	var e models.CachedExercise
	if err := s.getJSON(exercisePrefix+id, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// PutCachedHistory stores an exercise history snapshot.
func (s *Store) PutCachedHistory(h *models.CachedHistory) error {
	return s.putJSON(historyPrefix+h.ExerciseID, h)
}

// GetCachedHistory returns cached history for an exercise.
func (s *Store) GetCachedHistory(exerciseID string) (*models.CachedHistory, error) {
	var h models.CachedHistory
	if err := s.getJSON(historyPrefix+exerciseID, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// PutActiveSession stores the single active session record.
func (s *Store) PutActiveSession(sess *models.WorkoutSession) error {
	return s.putJSON(sessionKey, sess)
}

// GetActiveSession returns the active session, or ErrNotFound.
func (s *Store) GetActiveSession() (*models.WorkoutSession, error) {
	var sess models.WorkoutSession
	if err := s.getJSON(sessionKey, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// DeleteActiveSession clears the active session record.
func (s *Store) DeleteActiveSession() error {
	return s.del(sessionKey)
}

func logKey(sessionID, exerciseID string) string {
	return logPrefix + sessionID + ":" + exerciseID
}

// PutExerciseLog stores a log, indexed by session and exercise.
func (s *Store) PutExerciseLog(l *models.ExerciseLog) error {
	return s.putJSON(logKey(l.SessionID, l.ExerciseID), l)
}

// GetExerciseLog returns the log for one exercise in a session.
func (s *Store) GetExerciseLog(sessionID, exerciseID string) (*models.ExerciseLog, error) {
	var l models.ExerciseLog
	if err := s.getJSON(logKey(sessionID, exerciseID), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// ListExerciseLogs returns all logs for a session in key order.
func (s *Store) ListExerciseLogs(sessionID string) ([]*models.ExerciseLog, error) {
	var logs []*models.ExerciseLog
	err := s.forEachJSON(logPrefix+sessionID+":", func(raw []byte) error {
		var l models.ExerciseLog
		if err := json.Unmarshal(raw, &l); err != nil {
			return err
		}
		logs = append(logs, &l)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list logs for %s: %w", sessionID, err)
	}
	return logs, nil
}

// ClearSession removes the active session record and every log under it.
// Each delete is an independent store operation.
func (s *Store) ClearSession(sessionID string) error {
	logs, err := s.ListExerciseLogs(sessionID)
	if err != nil {
		return err
	}
	for _, l := range logs {
		if err := s.del(logKey(l.SessionID, l.ExerciseID)); err != nil {
			return err
		}
	}
	return s.DeleteActiveSession()
}

// forEachJSON iterates raw values under prefix in key order.
func (s *Store) forEachJSON(prefix string, fn func(raw []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(raw); err != nil {
				return err
			}
		}
		return nil
	})
}
