// ABOUTME: Sync manager: drains the pending queue against the network.
// ABOUTME: Strict insertion order, bounded retries, auth failures halt a pass.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harperreed/lift/internal/api"
	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/netmon"
	"github.com/harperreed/lift/internal/state"
	"github.com/harperreed/lift/internal/store"
)

const (
	// MaxRetries is the per-item retry ceiling before an item is marked failed.
	MaxRetries = 3
	// DrainInterval schedules periodic drains while online.
	DrainInterval = 30 * time.Second
	// OnlineDebounce lets the connection stabilize after an online transition.
	OnlineDebounce = 2 * time.Second
)

var (
	// ErrAlreadySyncing is returned when a drain is requested while one is
	// in progress. The queue is not touched.
	ErrAlreadySyncing = errors.New("sync already in progress")
	// ErrOffline is returned when a manual sync's reachability probe fails.
	ErrOffline = errors.New("server unreachable")
)

// Manager drains the pending sync queue. At most one drain runs at a time.
type Manager struct {
	state  *state.Store
	db     *store.Store
	client *api.Client
	mon    *netmon.Monitor

	draining atomic.Bool

	mu       sync.Mutex
	debounce *time.Timer
	unsub    func()
	stop     chan struct{}
	done     chan struct{}
}

// New creates a manager. Call Start to wire timers and triggers.
func New(st *state.Store, db *store.Store, client *api.Client, mon *netmon.Monitor) *Manager {
	return &Manager{state: st, db: db, client: client, mon: mon}
}

// Start wires the periodic drain timer and the debounced online trigger.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.stop != nil {
		m.mu.Unlock()
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	stop, done := m.stop, m.done

	if m.mon != nil {
		m.unsub = m.mon.Subscribe(func(online bool, _ state.Quality) {
			if !online {
				return
			}
			m.mu.Lock()
			if m.debounce != nil {
				m.debounce.Stop()
			}
			m.debounce = time.AfterFunc(OnlineDebounce, func() {
				_ = m.SyncPending(ctx)
			})
			m.mu.Unlock()
		})
	}
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(DrainInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if m.state.IsOnline() {
					_ = m.SyncPending(ctx)
				}
			}
		}
	}()
}

// Stop clears timers and subscriptions.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.debounce != nil {
		m.debounce.Stop()
		m.debounce = nil
	}
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// SyncNow re-verifies reachability with a direct probe, then drains.
func (m *Manager) SyncNow(ctx context.Context) error {
	if m.mon != nil {
		if q := m.mon.CheckConnectivity(ctx); q == state.QualityOffline {
			return ErrOffline
		}
	}
	return m.SyncPending(ctx)
}

// SyncPending runs one drain pass: every pending item, in insertion order,
// never concurrently. A second caller gets ErrAlreadySyncing immediately.
func (m *Manager) SyncPending(ctx context.Context) error {
	if !m.draining.CompareAndSwap(false, true) {
		return ErrAlreadySyncing
	}
	defer m.draining.Store(false)

	m.state.SetSyncing(true)
	m.state.SetSyncError("")
	defer func() {
		_, _ = m.state.RecomputePendingCount()
		_ = m.state.StampLastSync(time.Now().UTC())
		m.state.SetSyncing(false)
	}()

	items, err := m.db.ListQueue()
	if err != nil {
		return fmt.Errorf("fetch pending items: %w", err)
	}

	for _, item := range items {
		// Items that exhausted their retries wait for manual intervention.
		if item.Status == models.StatusFailed {
			continue
		}

		err := m.dispatch(ctx, item)
		if err == nil {
			if rmErr := m.db.RemoveQueueItem(item.ID); rmErr != nil {
				return fmt.Errorf("remove synced item %d: %w", item.ID, rmErr)
			}
			continue
		}

		if api.IsAuthError(err) {
			// Re-authentication is needed; nothing later in the pass can
			// succeed, and order must be preserved.
			m.state.SetSyncError(fmt.Sprintf("authentication required: %v", err))
			return err
		}

		updErr := m.db.UpdateQueueItem(item.ID, func(it *models.PendingSyncItem) {
			it.RetryCount++
			it.LastError = err.Error()
			if it.RetryCount >= MaxRetries {
				it.Status = models.StatusFailed
			}
		})
		if updErr != nil {
			return fmt.Errorf("record retry for item %d: %w", item.ID, updErr)
		}
	}
	return nil
}

// RetryFailed resets retry bookkeeping on failed items so the next drain
// picks them up again.
func (m *Manager) RetryFailed(ctx context.Context) error {
	items, err := m.db.ListQueue()
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.Status != models.StatusFailed {
			continue
		}
		err := m.db.UpdateQueueItem(item.ID, func(it *models.PendingSyncItem) {
			it.Status = models.StatusPending
			it.RetryCount = 0
			it.LastError = ""
		})
		if err != nil {
			return err
		}
	}
	return m.SyncPending(ctx)
}

// ClearQueue drops every queued item, synced or not, and resets the
// user-visible error. Manual escape hatch for a stuck queue.
func (m *Manager) ClearQueue() error {
	if err := m.db.ClearQueue(); err != nil {
		return err
	}
	m.state.SetSyncError("")
	_, err := m.state.RecomputePendingCount()
	return err
}
