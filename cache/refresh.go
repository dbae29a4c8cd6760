package cache

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// RefreshAccount re-fetches the first page for one account, resetting its
// cache entry. Unlike RefreshAll, a failure propagates to the caller so it
// can react, e.g. by starting a credential-refresh flow. A call that finds a
// fetch for the same account already in flight is dropped and returns nil.
func (s *Store) RefreshAccount(ctx context.Context, accountID string) error {
	applied, err := s.fetchFirstPage(ctx, accountID)
	if err != nil {
		return err
	}
	if applied {
		s.mu.Lock()
		s.persistLocked()
		s.mu.Unlock()
	}
	return nil
}

// RefreshAll fans a first-page fetch out to every account concurrently. One
// provider being down never blocks the others: each account's failure is
// logged and collected, not propagated. The aggregate cache is persisted
// once at the end rather than once per account. At most one refresh cycle
// runs at a time; an overlapping call is skipped entirely.
func (s *Store) RefreshAll(ctx context.Context, accountIDs []string) RefreshSummary {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		slog.Debug("Refresh cycle already running, skipping")
		return RefreshSummary{Skipped: true}
	}
	s.refreshing = true
	s.mu.Unlock()

	start := time.Now()
	var (
		wg      sync.WaitGroup
		resMu   sync.Mutex
		summary RefreshSummary
	)
	for _, accountID := range accountIDs {
		wg.Add(1)
		go func(accountID string) {
			defer wg.Done()
			if _, err := s.fetchFirstPage(ctx, accountID); err != nil {
				slog.Error("Failed to refresh account", "account", accountID, "error", err)
				resMu.Lock()
				summary.Failures = append(summary.Failures, RefreshFailure{AccountID: accountID, Err: err})
				resMu.Unlock()
				return
			}
			resMu.Lock()
			summary.Refreshed = append(summary.Refreshed, accountID)
			resMu.Unlock()
		}(accountID)
	}
	wg.Wait()

	s.mu.Lock()
	s.refreshing = false
	s.persistLocked()
	s.mu.Unlock()

	sort.Strings(summary.Refreshed)
	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].AccountID < summary.Failures[j].AccountID
	})
	s.metrics.IncRefreshRun(len(summary.Failures) == 0)
	s.metrics.SetRefreshDuration(time.Since(start))
	return summary
}

// fetchFirstPage resets an account's entry from a fresh page-one fetch. The
// bool reports whether the result was applied; a dropped duplicate or a
// stale response returns (false, nil) with the cache untouched.
func (s *Store) fetchFirstPage(ctx context.Context, accountID string) (bool, error) {
	s.mu.Lock()
	key := domainKey(accountID)
	if _, busy := s.inflight[key]; busy {
		s.mu.Unlock()
		return false, nil
	}
	s.inflight[key] = struct{}{}
	gen := s.gens[key]
	size := s.clampDomainPageSize(accountID)
	s.mu.Unlock()

	page, err := s.api.ListDomains(ctx, accountID, 1, size)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
	if s.gens[key] != gen {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	entry := &AccountEntry{
		Items:       page.Items,
		Page:        page.Page,
		HasMore:     page.HasMore,
		LastUpdated: s.now().Unix(),
	}
	// Listings come from the DNS provider, which knows nothing about local
	// metadata; carry it over from the previous entry by domain id.
	if prev, ok := s.domains[accountID]; ok {
		byID := make(map[string]int, len(prev.Items))
		for i, d := range prev.Items {
			byID[d.ID] = i
		}
		for i := range entry.Items {
			if j, ok := byID[entry.Items[i].ID]; ok {
				entry.Items[i].Metadata = prev.Items[j].Metadata
			}
		}
	}
	s.domains[accountID] = entry
	return true, nil
}
