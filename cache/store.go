package cache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/evanofslack/dns-manager-sync/api"
	"github.com/evanofslack/dns-manager-sync/debounce"
	"github.com/evanofslack/dns-manager-sync/metrics"
	"github.com/evanofslack/dns-manager-sync/provider"
	"github.com/evanofslack/dns-manager-sync/selection"
	"github.com/evanofslack/dns-manager-sync/state"
)

// CapabilitySource resolves the capability row for an account's provider,
// used to clamp requested page sizes.
type CapabilitySource interface {
	ForAccount(accountID string) provider.Capabilities
}

// Store owns the multi-account domain cache and the open-domain record list.
// It is the only writer of cache state; the UI reads snapshots and issues
// intents through the exported methods. The mutex is never held across a
// network call, so cache mutations stay atomic with respect to each other
// while any number of fetches are outstanding.
type Store struct {
	mu sync.Mutex

	api     api.Client
	caps    CapabilitySource
	db      *state.Store
	metrics *metrics.Metrics
	now     func() time.Time

	pageSize int

	domains  map[string]*AccountEntry
	scroll   map[string]int
	inflight map[string]struct{}
	gens     map[string]uint64

	refreshing bool

	records   *RecordListState
	recordGen uint64

	textQuery string
	tagFilter map[string]struct{}

	domainSel *selection.Set
	recordSel *selection.Set

	persistDebounce *debounce.Debouncer
	searchDebounce  *debounce.Debouncer

	paginationMode string
	recordHint     bool
}

type Options struct {
	Client          api.Client
	Capabilities    CapabilitySource
	Store           *state.Store
	Metrics         *metrics.Metrics
	PageSize        int
	PersistDebounce time.Duration
	SearchDebounce  time.Duration
}

func New(opts Options) *Store {
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	if opts.PersistDebounce <= 0 {
		opts.PersistDebounce = 2 * time.Second
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = 400 * time.Millisecond
	}

	s := &Store{
		api:             opts.Client,
		caps:            opts.Capabilities,
		db:              opts.Store,
		metrics:         opts.Metrics,
		now:             time.Now,
		pageSize:        opts.PageSize,
		domains:         make(map[string]*AccountEntry),
		scroll:          make(map[string]int),
		inflight:        make(map[string]struct{}),
		gens:            make(map[string]uint64),
		tagFilter:       make(map[string]struct{}),
		domainSel:       selection.New(),
		recordSel:       selection.New(),
		persistDebounce: debounce.New(opts.PersistDebounce),
		searchDebounce:  debounce.New(opts.SearchDebounce),
	}

	blob, found, err := state.Get[persistedCache](s.db, state.KeyDomainCache)
	if err != nil {
		slog.Warn("Failed to load persisted domain cache", "error", err)
	} else if found {
		if blob.Domains != nil {
			s.domains = blob.Domains
		}
		if blob.Scroll != nil {
			s.scroll = blob.Scroll
		}
	}

	s.paginationMode = state.GetWithDefault(s.db, state.KeyPaginationMode, "pages")
	s.recordHint = state.GetWithDefault(s.db, state.KeyRecordHint, true)
	return s
}

// DomainsForAccount returns a snapshot of the cached entry for an account.
// The second return distinguishes "never fetched" from "fetched and empty":
// it is false only when no refresh has ever succeeded for the account.
func (s *Store) DomainsForAccount(accountID string) (AccountEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.domains[accountID]
	if !ok {
		return AccountEntry{}, false
	}
	snapshot := *entry
	snapshot.Items = append([]api.Domain(nil), entry.Items...)
	return snapshot, true
}

// HasCachedData reports whether the account has a cache entry at all, even
// one holding zero domains.
func (s *Store) HasCachedData(accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.domains[accountID]
	return ok
}

func (s *Store) IsAccountLoading(accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inflight[domainKey(accountID)]
	return busy
}

func (s *Store) HasMoreDomains(accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.domains[accountID]
	return ok && entry.HasMore
}

// SelectedDomain resolves one cached domain by id.
func (s *Store) SelectedDomain(accountID, domainID string) (api.Domain, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.domains[accountID]
	if !ok {
		return api.Domain{}, false
	}
	for _, d := range entry.Items {
		if d.ID == domainID {
			return d, true
		}
	}
	return api.Domain{}, false
}

func (s *Store) DomainSelection() *selection.Set { return s.domainSel }
func (s *Store) RecordSelection() *selection.Set { return s.recordSel }

// PaginationMode and RecordHintEnabled surface UI preference keys this layer
// reads but does not own.
func (s *Store) PaginationMode() string  { return s.paginationMode }
func (s *Store) RecordHintEnabled() bool { return s.recordHint }

func (s *Store) ScrollPosition(accountID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scroll[accountID]
}

// SetScrollPosition records a scroll offset and persists it debounced, so
// rapid scrolling does not hammer the store.
func (s *Store) SetScrollPosition(accountID string, position int) {
	s.mu.Lock()
	s.scroll[accountID] = position
	s.mu.Unlock()

	s.persistDebounce.Trigger("scroll", func() {
		s.mu.Lock()
		s.persistLocked()
		s.mu.Unlock()
	})
}

// DropAccount removes an account's cache entry, invalidating any outstanding
// fetches for it. Called when the account itself is deleted.
func (s *Store) DropAccount(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.domains, accountID)
	delete(s.scroll, accountID)
	s.gens[domainKey(accountID)]++
	if s.records != nil && s.records.AccountID == accountID {
		s.closeDomainLocked()
	}
	s.metrics.SetCachedDomains(accountID, 0)
	s.persistLocked()
}

// ClearAll wipes the whole cache, e.g. when the last account is removed.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.gens {
		s.gens[key]++
	}
	for accountID := range s.domains {
		s.gens[domainKey(accountID)]++
		s.metrics.SetCachedDomains(accountID, 0)
	}
	s.domains = make(map[string]*AccountEntry)
	s.scroll = make(map[string]int)
	s.textQuery = ""
	s.tagFilter = make(map[string]struct{})
	s.closeDomainLocked()
	s.domainSel.Exit()

	if err := s.db.Remove(state.KeyDomainCache); err != nil {
		slog.Error("Failed to clear persisted domain cache", "error", err)
	}
}

// Flush writes any debounced state immediately. Called on shutdown, before
// the store is closed.
func (s *Store) Flush() {
	s.persistDebounce.Flush()
}

func (s *Store) persistLocked() {
	blob := persistedCache{Domains: s.domains, Scroll: s.scroll}
	if err := state.Set(s.db, state.KeyDomainCache, blob); err != nil {
		slog.Error("Failed to persist domain cache", "error", err)
	}
	for accountID, entry := range s.domains {
		s.metrics.SetCachedDomains(accountID, len(entry.Items))
	}
}

func (s *Store) clampDomainPageSize(accountID string) int {
	if limit := s.caps.ForAccount(accountID).MaxPageSizeDomains; s.pageSize > limit {
		return limit
	}
	return s.pageSize
}

func (s *Store) clampRecordPageSize(accountID string) int {
	if limit := s.caps.ForAccount(accountID).MaxPageSizeRecords; s.pageSize > limit {
		return limit
	}
	return s.pageSize
}

func domainKey(accountID string) string {
	return "domains:" + accountID
}

func recordKey(accountID, domainID string) string {
	return "records:" + accountID + "::" + domainID
}
