package cache

import (
	"context"
)

// LoadMoreDomains appends the next page to an account's cache entry. It is a
// no-op returning (false, nil) when the account has no entry, the entry is
// exhausted, or a load for the same account is already in flight. The
// in-flight guard is per account, so unrelated accounts never block each
// other.
func (s *Store) LoadMoreDomains(ctx context.Context, accountID string) (bool, error) {
	s.mu.Lock()
	entry, ok := s.domains[accountID]
	if !ok || !entry.HasMore {
		s.mu.Unlock()
		return false, nil
	}
	key := domainKey(accountID)
	if _, busy := s.inflight[key]; busy {
		s.mu.Unlock()
		return false, nil
	}
	s.inflight[key] = struct{}{}
	gen := s.gens[key]
	nextPage := entry.Page + 1
	size := s.clampDomainPageSize(accountID)
	s.mu.Unlock()

	page, err := s.api.ListDomains(ctx, accountID, nextPage, size)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
	if s.gens[key] != gen {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	entry, ok = s.domains[accountID]
	if !ok {
		return false, nil
	}
	entry.Items = append(entry.Items, page.Items...)
	entry.Page = page.Page
	entry.HasMore = page.HasMore
	entry.LastUpdated = s.now().Unix()
	s.persistLocked()
	return true, nil
}
