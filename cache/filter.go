package cache

import (
	"sort"
	"strings"

	"github.com/evanofslack/dns-manager-sync/api"
	"github.com/evanofslack/dns-manager-sync/selection"
)

// FilterDomains derives a filtered view without touching the input: the
// case-insensitive free-text predicate runs first, the ANY-match tag
// predicate second. Filtering domains is always client-local over the cached
// pages; it never issues network calls.
func FilterDomains(items []api.Domain, query string, tags []string) []api.Domain {
	out := make([]api.Domain, 0, len(items))
	query = strings.ToLower(query)
	for _, d := range items {
		if query != "" && !strings.Contains(strings.ToLower(d.Name), query) {
			continue
		}
		if len(tags) > 0 && !anyTagMatch(d.Metadata.Tags, tags) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func anyTagMatch(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// FilteredDomains applies the store's active text and tag filters to one
// account's cached items.
func (s *Store) FilteredDomains(accountID string) []api.Domain {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.domains[accountID]
	if !ok {
		return nil
	}
	return FilterDomains(entry.Items, s.textQuery, s.activeTagFiltersLocked())
}

// SelectAllDomains selects every currently visible (filtered) domain of one
// account. No-op outside batch mode.
func (s *Store) SelectAllDomains(accountID string) int {
	visible := s.FilteredDomains(accountID)
	keys := make([]string, 0, len(visible))
	for _, d := range visible {
		keys = append(keys, selection.Key(accountID, d.ID))
	}
	return s.domainSel.SelectAll(keys)
}

func (s *Store) SetTextFilter(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textQuery = query
}

func (s *Store) TextFilter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textQuery
}

// ToggleTagFilter flips one tag in the active tag filter and reports whether
// it is now active.
func (s *Store) ToggleTagFilter(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tagFilter[tag]; ok {
		delete(s.tagFilter, tag)
		return false
	}
	s.tagFilter[tag] = struct{}{}
	return true
}

func (s *Store) ActiveTagFilters() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTagFiltersLocked()
}

func (s *Store) activeTagFiltersLocked() []string {
	tags := make([]string, 0, len(s.tagFilter))
	for tag := range s.tagFilter {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (s *Store) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textQuery = ""
	s.tagFilter = make(map[string]struct{})
}

// AllUsedTags recomputes the tag index on demand: the sorted union of every
// tag across all cached domains of all accounts. It is derived, never
// stored, so it cannot drift from the cache.
func (s *Store) AllUsedTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.tagIndexLocked()
	tags := make([]string, 0, len(index))
	for tag := range index {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (s *Store) tagIndexLocked() map[string]struct{} {
	index := make(map[string]struct{})
	for _, entry := range s.domains {
		for _, d := range entry.Items {
			for _, tag := range d.Metadata.Tags {
				index[tag] = struct{}{}
			}
		}
	}
	return index
}
