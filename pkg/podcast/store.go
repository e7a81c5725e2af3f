package podcast

import (
	"encoding/json"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v3"
)

const sessionKeyPrefix = "session:"

// Store persists session snapshots in an embedded Badger database so that
// a recording survives a crash and past sessions stay queryable.
type Store struct {
	db *badger.DB
}

// OpenStore opens (or creates) the database at dir.
func OpenStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveSession writes a full JSON snapshot of the session, replacing any
// previous snapshot with the same ID.
func (s *Store) SaveSession(sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sess.ID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(sessionKeyPrefix+sess.ID), data)
	})
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

// LoadSession reads a session snapshot by ID.
func (s *Store) LoadSession(id string) (*Session, error) {
	var sess Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKeyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sess)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return &sess, nil
}

// ListSessions returns the IDs of every stored session.
func (s *Store) ListSessions() ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(sessionKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, strings.TrimPrefix(key, sessionKeyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
