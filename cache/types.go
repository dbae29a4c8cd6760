package cache

import (
	"errors"

	"github.com/evanofslack/dns-manager-sync/api"
)

// Tag and note limits, enforced before any network call.
const (
	MaxTags       = 10
	MaxTagLength  = 50
	MaxNoteLength = 500
)

var (
	ErrNoOpenDomain   = errors.New("no open domain")
	ErrEmptySelection = errors.New("selection is empty")
	ErrTooManyTags    = errors.New("too many tags")
	ErrTagTooLong     = errors.New("tag too long")
	ErrEmptyTag       = errors.New("tag is empty")
	ErrNoteTooLong    = errors.New("note too long")
	ErrUnknownColor   = errors.New("unknown color")
)

// AccountEntry is the cached domain list for one account. Items accumulates
// every successfully fetched page since the last reset; Page is the last
// fetched page number. HasMore=false is terminal until the account is
// refreshed again.
type AccountEntry struct {
	Items       []api.Domain `json:"items"`
	Page        int          `json:"page"`
	HasMore     bool         `json:"hasMore"`
	LastUpdated int64        `json:"lastUpdated"`
}

// RecordListState is the page state for the one currently open domain. It is
// rebuilt every time a domain opens and never persisted.
type RecordListState struct {
	AccountID  string
	DomainID   string
	Items      []api.DNSRecord
	Page       int
	PageSize   int
	HasMore    bool
	TotalCount int
	Keyword    string
	RecordType api.RecordType
}

// persistedCache is the blob written through to the store on every cache
// mutation that should survive a restart.
type persistedCache struct {
	Domains map[string]*AccountEntry `json:"domainsByAccount"`
	Scroll  map[string]int           `json:"scrollPosition"`
}

// RefreshFailure records one account whose background refresh failed.
type RefreshFailure struct {
	AccountID string
	Err       error
}

// RefreshSummary is the per-account outcome of a multi-account refresh.
// Skipped is set when another refresh cycle was already running.
type RefreshSummary struct {
	Skipped   bool
	Refreshed []string
	Failures  []RefreshFailure
}
