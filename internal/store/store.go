// ABOUTME: Badger-backed durable local store with six named collections.
// ABOUTME: Crash-tolerant persistence for sessions, logs, caches, and the sync queue.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	badger "github.com/dgraph-io/badger/v3"
)

// Key prefixes, one per collection.
const (
	workoutPrefix  = "workout:"  // cached workouts, keyed by date
	exercisePrefix = "exercise:" // cached exercises, keyed by id
	sessionKey     = "session:active"
	logPrefix      = "log:"     // exercise logs, keyed by session + exercise
	queuePrefix    = "queue:"   // pending sync items, autoincrement key
	historyPrefix  = "history:" // cached history, keyed by exercise id

	tempSeqKey    = "meta:tempseq"
	queueSeqKey   = "meta:queueseq"
	lastSyncKey   = "meta:lastsync"
	tempMapPrefix = "meta:tempmap:"
)

// ErrNotFound is returned when a key has no value in its collection.
var ErrNotFound = errors.New("store: not found")

// Store wraps a Badger database holding all local collections.
// Operations are atomic within a single collection record only.
type Store struct {
	db       *badger.DB
	queueSeq *badger.Sequence
	tempSeq  *badger.Sequence
}

// Open opens (creating if needed) the store at dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	queueSeq, err := db.GetSequence([]byte(queueSeqKey), 64)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open queue sequence: %w", err)
	}
	tempSeq, err := db.GetSequence([]byte(tempSeqKey), 64)
	if err != nil {
		_ = queueSeq.Release()
		_ = db.Close()
		return nil, fmt.Errorf("open temp-id sequence: %w", err)
	}

	return &Store{db: db, queueSeq: queueSeq, tempSeq: tempSeq}, nil
}

// Close releases sequences and closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	_ = s.queueSeq.Release()
	_ = s.tempSeq.Release()
	return s.db.Close()
}

// NextTempSeq returns the next value of the persisted temp-id counter.
// Values are monotonic for the lifetime of the installed client and are
// never reused, even across restarts.
func (s *Store) NextTempSeq() (uint64, error) {
	n, err := s.tempSeq.Next()
	if err != nil {
		return 0, fmt.Errorf("next temp sequence: %w", err)
	}
	return n, nil
}

// PutTempIDMapping persists a temp id → server id mapping.
func (s *Store) PutTempIDMapping(tempID, serverID string) error {
	return s.put(tempMapPrefix+tempID, []byte(serverID))
}

// LoadTempIDMap loads all persisted temp id mappings.
func (s *Store) LoadTempIDMap() (map[string]string, error) {
	m := make(map[string]string)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(tempMapPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			m[string(item.Key()[len(prefix):])] = string(val)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load temp id map: %w", err)
	}
	return m, nil
}

// SetLastSync persists the last successful drain timestamp.
func (s *Store) SetLastSync(t time.Time) error {
	return s.put(lastSyncKey, []byte(t.UTC().Format(time.RFC3339Nano)))
}

// GetLastSync returns the last drain timestamp, or the zero time if none.
func (s *Store) GetLastSync() (time.Time, error) {
	raw, err := s.get(lastSyncKey)
	if errors.Is(err, ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last sync: %w", err)
	}
	return t, nil
}

// Wipe removes every record, including the temp id map. Full logout only.
func (s *Store) Wipe() error {
	return s.db.DropAll()
}

// put stores raw bytes under key.
func (s *Store) put(key string, val []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// get retrieves raw bytes for key, mapping missing keys to ErrNotFound.
func (s *Store) get(key string) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return val, nil
}

// del removes key. Deleting a missing key is not an error.
func (s *Store) del(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// putJSON marshals v and stores it under key.
func (s *Store) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.put(key, data)
}

// getJSON retrieves key and unmarshals it into v.
func (s *Store) getJSON(key string, v any) error {
	data, err := s.get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}
