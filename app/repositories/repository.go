package repositories

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// KVKeyPrefix namespaces dashboard keys inside the Badger keyspace.
const KVKeyPrefix = "kv:"

var _ KV = (*BadgerKV)(nil)

// BadgerKV implements KV on a Badger database.
type BadgerKV struct {
	db     *badger.DB
	mutex  sync.RWMutex
	dbPath string
	owned  bool
}

// NewBadgerKV wraps an already open database. The caller keeps ownership.
func NewBadgerKV(db *badger.DB) *BadgerKV {
	return &BadgerKV{db: db}
}

// OpenBadgerKV opens (creating if needed) a database at path. An empty path
// opens an in-memory database.
func OpenBadgerKV(path string) (*BadgerKV, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create badger dir: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerKV{db: db, dbPath: path, owned: true}, nil
}

// DB exposes the underlying database for backup and restore.
func (r *BadgerKV) DB() *badger.DB {
	return r.db
}

func (r *BadgerKV) Get(key string) (string, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var value string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(KVKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *BadgerKV) Set(key, value string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(KVKeyPrefix+key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (r *BadgerKV) Remove(key string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(KVKeyPrefix + key))
	})
	if err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Keys lists every stored key without its prefix.
func (r *BadgerKV) Keys() ([]string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var keys []string
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(KVKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return keys, err
}

// Clear drops every key.
func (r *BadgerKV) Clear() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.db.DropAll()
}

// Close closes the database if this KV opened it.
func (r *BadgerKV) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if !r.owned {
		return nil
	}
	return r.db.Close()
}
