package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/evanofslack/dns-manager-sync/metrics"
)

// keyPrefix namespaces every key this application writes, so Clear only ever
// touches our own data.
const keyPrefix = "dnsmanager:"

// Persisted keys owned by or read by the cache layer.
const (
	KeyDomainCache    = "cache:domains"
	KeyPaginationMode = "pref:paginationMode"
	KeyRecordHint     = "pref:recordHint"
)

// Store is a typed key/value persistence facade over badger. Values are JSON
// encoded; typed access goes through the package-level generic functions.
type Store struct {
	db      *badger.DB
	metrics *metrics.Metrics
}

func New(path string, m *metrics.Metrics) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &Store{db: db, metrics: m}, nil
}

// Get reads the value at key into a T. The second return is false when the
// key is absent.
func Get[T any](s *Store, key string) (T, bool, error) {
	var value T
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(fullKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &value)
		})
	})
	s.metrics.IncStoreRequest("read", err == nil)
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, found, nil
}

// GetWithDefault reads the value at key, returning def when the key is absent
// or unreadable.
func GetWithDefault[T any](s *Store, key string, def T) T {
	value, found, err := Get[T](s, key)
	if err != nil || !found {
		return def
	}
	return value
}

func Set[T any](s *Store, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		s.metrics.IncStoreRequest("update", false)
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(fullKey(key), data)
	})
	s.metrics.IncStoreRequest("update", err == nil)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(fullKey(key))
	})
	s.metrics.IncStoreRequest("delete", err == nil)
	if err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

func (s *Store) Has(key string) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(fullKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	s.metrics.IncStoreRequest("read", err == nil)
	if err != nil {
		return false, fmt.Errorf("has %q: %w", key, err)
	}
	return found, nil
}

// Clear removes every key under the application prefix.
func (s *Store) Clear() error {
	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	var keys [][]byte
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	prefix := []byte(keyPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			s.metrics.IncStoreRequest("delete", false)
			return fmt.Errorf("clear: %w", err)
		}
	}
	err := txn.Commit()
	s.metrics.IncStoreRequest("delete", err == nil)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func fullKey(key string) []byte {
	return []byte(keyPrefix + key)
}
