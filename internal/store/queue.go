// ABOUTME: Pending-sync queue collection: the durable intent log.
// ABOUTME: Autoincrement keys preserve insertion order across restarts.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/lift/internal/models"
)

func queueKey(id uint64) string {
	// Zero-padded so lexicographic key order is insertion order.
	return fmt.Sprintf("%s%020d", queuePrefix, id)
}

// AddQueueItem appends an item, assigning its autoincrement id and
// timestamp. The item is mutated in place with the assigned values.
func (s *Store) AddQueueItem(item *models.PendingSyncItem) error {
	id, err := s.queueSeq.Next()
	if err != nil {
		return fmt.Errorf("next queue sequence: %w", err)
	}
	item.ID = id
	item.Status = models.StatusPending
	item.Timestamp = time.Now().UTC()
	return s.putJSON(queueKey(id), item)
}

// ListQueue returns every pending sync item in insertion order.
func (s *Store) ListQueue() ([]*models.PendingSyncItem, error) {
	var items []*models.PendingSyncItem
	err := s.forEachJSON(queuePrefix, func(raw []byte) error {
		var item models.PendingSyncItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return err
		}
		items = append(items, &item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	return items, nil
}

// CountQueue returns the number of items still awaiting sync.
func (s *Store) CountQueue() (int, error) {
	items, err := s.ListQueue()
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// RemoveQueueItem deletes a synced (or manually cleared) item by id.
func (s *Store) RemoveQueueItem(id uint64) error {
	return s.del(queueKey(id))
}

// UpdateQueueItem applies a partial update to one item, used for
// retry-count and status bookkeeping.
func (s *Store) UpdateQueueItem(id uint64, mutate func(*models.PendingSyncItem)) error {
	var item models.PendingSyncItem
	if err := s.getJSON(queueKey(id), &item); err != nil {
		return err
	}
	mutate(&item)
	return s.putJSON(queueKey(id), &item)
}

// ClearQueue removes every item, regardless of status.
func (s *Store) ClearQueue() error {
	items, err := s.ListQueue()
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := s.RemoveQueueItem(item.ID); err != nil {
			return err
		}
	}
	return nil
}
