// ABOUTME: In-memory reactive state for the offline workout experience.
// ABOUTME: Single writer; mutations write through to the durable store.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/store"
)

// Quality is the coarse connection-quality classification.
type Quality string

const (
	QualityGood    Quality = "good"
	QualitySlow    Quality = "slow"
	QualityOffline Quality = "offline"
)

// ErrNoActiveSession is returned when an operation needs a session
// and none is active.
var ErrNoActiveSession = errors.New("no active session")

// Snapshot is a point-in-time copy of the observable state.
type Snapshot struct {
	IsOnline          bool
	ConnectionQuality Quality
	IsSyncing         bool
	LastSyncTime      time.Time
	SyncError         string
	PendingSyncCount  int
	Session           *models.WorkoutSession
}

// Store is the single mutable model of the workout experience. It is an
// explicitly constructed object so tests can run independent instances.
type Store struct {
	mu sync.Mutex
	db *store.Store

	isOnline     bool
	quality      Quality
	isSyncing    bool
	lastSyncTime time.Time
	syncError    string
	pendingCount int

	session   *models.WorkoutSession
	logs      map[string]*models.ExerciseLog // keyed by exercise id
	tempIDMap map[string]string

	subs    map[int]func(Snapshot)
	nextSub int
}

// New creates a state store backed by db. Call Load before use.
func New(db *store.Store) *Store {
	return &Store{
		db:        db,
		isOnline:  true,
		quality:   QualityGood,
		logs:      make(map[string]*models.ExerciseLog),
		tempIDMap: make(map[string]string),
		subs:      make(map[int]func(Snapshot)),
	}
}

// Load rehydrates the persisted subset and the offline mirrors from the
// durable store. Idempotent; safe to call once at boot.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.db.LoadTempIDMap()
	if err != nil {
		return err
	}
	s.tempIDMap = m

	last, err := s.db.GetLastSync()
	if err != nil {
		return err
	}
	s.lastSyncTime = last

	sess, err := s.db.GetActiveSession()
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	s.session = sess

	s.logs = make(map[string]*models.ExerciseLog)
	if sess != nil {
		logs, err := s.db.ListExerciseLogs(sess.ID)
		if err != nil {
			return err
		}
		for _, l := range logs {
			s.logs[l.ExerciseID] = l
		}
	}

	count, err := s.db.CountQueue()
	if err != nil {
		return err
	}
	s.pendingCount = count
	return nil
}

// Subscribe registers an observer and returns its disposer. Observers are
// invoked after every mutation, outside the store lock.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns a copy of the current observable state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		IsOnline:          s.isOnline,
		ConnectionQuality: s.quality,
		IsSyncing:         s.isSyncing,
		LastSyncTime:      s.lastSyncTime,
		SyncError:         s.syncError,
		PendingSyncCount:  s.pendingCount,
	}
	if s.session != nil {
		copied := *s.session
		snap.Session = &copied
	}
	return snap
}

// notifyLocked snapshots under the lock and schedules observer callbacks
// after the caller releases it.
func (s *Store) notifyLocked() func() {
	snap := s.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return func() {
		for _, fn := range fns {
			fn(snap)
		}
	}
}

// SetConnectivity publishes the monitor's verdict. The state store is the
// single source of truth for online status.
func (s *Store) SetConnectivity(online bool, q Quality) {
	s.mu.Lock()
	s.isOnline = online
	s.quality = q
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// IsOnline reports the current believed connectivity.
func (s *Store) IsOnline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOnline
}

// SetSyncing flips the drain-in-progress flag.
func (s *Store) SetSyncing(v bool) {
	s.mu.Lock()
	s.isSyncing = v
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// SetSyncError records (or clears) the sticky user-visible sync error.
func (s *Store) SetSyncError(msg string) {
	s.mu.Lock()
	s.syncError = msg
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// StampLastSync persists and publishes the completion time of a drain pass.
func (s *Store) StampLastSync(t time.Time) error {
	s.mu.Lock()
	defer func() {
		notify := s.notifyLocked()
		s.mu.Unlock()
		notify()
	}()
	if err := s.db.SetLastSync(t); err != nil {
		return err
	}
	s.lastSyncTime = t
	return nil
}

// RecomputePendingCount refreshes the queue size from the durable store.
func (s *Store) RecomputePendingCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputePendingLocked()
}

func (s *Store) recomputePendingLocked() (int, error) {
	count, err := s.db.CountQueue()
	if err != nil {
		return 0, err
	}
	s.pendingCount = count
	return count, nil
}

// GenerateTempID allocates a globally unique placeholder id from the
// persisted counter plus a wall-clock component.
func (s *Store) GenerateTempID() (string, error) {
	n, err := s.db.NextTempSeq()
	if err != nil {
		return "", err
	}
	return models.NewTempID(n, time.Now()), nil
}

// MapTempID records a temp → server id mapping, persists it, and promotes
// the id anywhere it appears in the local mirrors.
func (s *Store) MapTempID(tempID, serverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.PutTempIDMapping(tempID, serverID); err != nil {
		return err
	}
	s.tempIDMap[tempID] = serverID

	if s.session != nil && s.session.ID == tempID {
		// Re-key the session and its logs under the real id.
		if err := s.db.ClearSession(tempID); err != nil {
			return err
		}
		s.session.ID = serverID
		if err := s.db.PutActiveSession(s.session); err != nil {
			return err
		}
		for _, l := range s.logs {
			l.SessionID = serverID
			if err := s.db.PutExerciseLog(l); err != nil {
				return err
			}
		}
		return nil
	}

	for _, l := range s.logs {
		if l.ID == tempID {
			l.ID = serverID
			if err := s.db.PutExerciseLog(l); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetRealID resolves id through the temp-id map. Unknown ids are returned
// unchanged so call sites never need to branch.
func (s *Store) GetRealID(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if real, ok := s.tempIDMap[id]; ok {
		return real
	}
	return id
}

// Session returns a copy of the active session mirror, or nil.
func (s *Store) Session() *models.WorkoutSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	copied := *s.session
	return &copied
}

// LogForExercise returns a copy of the log for one exercise, or nil.
func (s *Store) LogForExercise(exerciseID string) *models.ExerciseLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[exerciseID]
	if !ok {
		return nil
	}
	copied := *l
	copied.Sets = append([]models.SetEntry(nil), l.Sets...)
	return &copied
}

// enqueueLocked persists one intent item and refreshes the pending count.
func (s *Store) enqueueLocked(typ models.SyncType, payload any, tempID string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	item := &models.PendingSyncItem{
		Type:           typ,
		Payload:        data,
		TempID:         tempID,
		IdempotencyKey: ulid.Make().String(),
	}
	if err := s.db.AddQueueItem(item); err != nil {
		return err
	}
	_, err = s.recomputePendingLocked()
	return err
}
