// Package selection implements the batch-selection machine used by both the
// domain selector (keys span accounts) and the record selector (keys are
// record ids within one domain). Selection is always empty while batch mode
// is off.
package selection

import (
	"sort"
	"strings"
	"sync"
)

const keySep = "::"

type Set struct {
	mu        sync.Mutex
	batchMode bool
	keys      map[string]struct{}
}

func New() *Set {
	return &Set{keys: make(map[string]struct{})}
}

// ToggleBatchMode flips batch mode and reports the new state. The set is
// emptied on every transition, in both directions.
func (s *Set) ToggleBatchMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchMode = !s.batchMode
	s.keys = make(map[string]struct{})
	return s.batchMode
}

func (s *Set) BatchMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batchMode
}

// Toggle flips membership of key and reports whether it is now selected.
// Outside batch mode it is a no-op.
func (s *Set) Toggle(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.batchMode {
		return false
	}
	if _, ok := s.keys[key]; ok {
		delete(s.keys, key)
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// SelectAll adds every given key and reports the resulting selection size.
// Outside batch mode it is a no-op.
func (s *Set) SelectAll(keys []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.batchMode {
		return 0
	}
	for _, key := range keys {
		s.keys[key] = struct{}{}
	}
	return len(s.keys)
}

func (s *Set) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// Keys returns the selected keys in sorted order.
func (s *Set) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.keys))
	for key := range s.keys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = make(map[string]struct{})
}

// Exit leaves batch mode and clears the selection. Called unconditionally
// after a batch operation completes, successful or partial.
func (s *Set) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchMode = false
	s.keys = make(map[string]struct{})
}

// Key builds the composite selection key for a domain.
func Key(accountID, domainID string) string {
	return accountID + keySep + domainID
}

// SplitKey parses a composite domain selection key.
func SplitKey(key string) (accountID, domainID string, ok bool) {
	parts := strings.SplitN(key, keySep, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
