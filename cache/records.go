package cache

import (
	"context"
	"log/slog"

	"github.com/evanofslack/dns-manager-sync/api"
)

const searchDebounceKey = "records:search"

// OpenDomain makes a domain the active one and fetches its first record
// page. Any record state for a previously open domain is discarded, and
// responses still in flight for it will be rejected as stale.
func (s *Store) OpenDomain(ctx context.Context, accountID, domainID string) error {
	s.mu.Lock()
	s.closeDomainLocked()
	s.records = &RecordListState{
		AccountID:  accountID,
		DomainID:   domainID,
		TotalCount: -1,
	}
	s.mu.Unlock()

	_, err := s.loadRecords(ctx, 1, false)
	return err
}

// CloseDomain discards the open domain's record state.
func (s *Store) CloseDomain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeDomainLocked()
}

func (s *Store) closeDomainLocked() {
	s.recordGen++
	s.records = nil
	s.recordSel.Exit()
	s.searchDebounce.Cancel(searchDebounceKey)
}

// RecordList returns a snapshot of the open domain's record state.
func (s *Store) RecordList() (RecordListState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		return RecordListState{}, false
	}
	snapshot := *s.records
	snapshot.Items = append([]api.DNSRecord(nil), s.records.Items...)
	return snapshot, true
}

// ActiveDomain reports which domain the record list is bound to.
func (s *Store) ActiveDomain() (accountID, domainID string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		return "", "", false
	}
	return s.records.AccountID, s.records.DomainID, true
}

// JumpToRecordsPage replaces the record list with the given page.
func (s *Store) JumpToRecordsPage(ctx context.Context, page int) (bool, error) {
	return s.loadRecords(ctx, page, false)
}

// LoadMoreRecords appends the next record page, for infinite-scroll
// pagination. No-op when exhausted or a load is already in flight.
func (s *Store) LoadMoreRecords(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.records == nil || !s.records.HasMore {
		s.mu.Unlock()
		return false, nil
	}
	nextPage := s.records.Page + 1
	s.mu.Unlock()
	return s.loadRecords(ctx, nextPage, true)
}

// SearchRecords updates the free-text keyword and schedules a debounced
// server-side re-query. Records are paginated server-side and may exceed
// what is cached, so unlike the domain filter this cannot be a client-local
// derivation.
func (s *Store) SearchRecords(ctx context.Context, keyword string) {
	s.mu.Lock()
	if s.records == nil {
		s.mu.Unlock()
		return
	}
	s.records.Keyword = keyword
	s.mu.Unlock()

	s.searchDebounce.Trigger(searchDebounceKey, func() {
		if _, err := s.loadRecords(ctx, 1, false); err != nil {
			slog.Warn("Failed to re-query records for search", "keyword", keyword, "error", err)
		}
	})
}

// SetRecordTypeFilter narrows the record list to one type and re-queries
// immediately.
func (s *Store) SetRecordTypeFilter(ctx context.Context, recordType api.RecordType) error {
	s.mu.Lock()
	if s.records == nil {
		s.mu.Unlock()
		return ErrNoOpenDomain
	}
	s.records.RecordType = recordType
	s.mu.Unlock()

	_, err := s.loadRecords(ctx, 1, false)
	return err
}

// loadRecords fetches one record page for the open domain. The generation
// captured before the call is compared when the response lands; if the
// active domain changed in between, the response is discarded rather than
// written into the wrong list.
func (s *Store) loadRecords(ctx context.Context, page int, appendMode bool) (bool, error) {
	s.mu.Lock()
	rs := s.records
	if rs == nil {
		s.mu.Unlock()
		return false, ErrNoOpenDomain
	}
	key := recordKey(rs.AccountID, rs.DomainID)
	if _, busy := s.inflight[key]; busy {
		s.mu.Unlock()
		return false, nil
	}
	s.inflight[key] = struct{}{}
	gen := s.recordGen
	accountID, domainID := rs.AccountID, rs.DomainID
	filter := api.RecordFilter{Keyword: rs.Keyword, Type: rs.RecordType}
	size := s.clampRecordPageSize(accountID)
	s.mu.Unlock()

	resp, err := s.api.ListRecords(ctx, accountID, domainID, page, size, filter)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
	if s.recordGen != gen {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	rs = s.records
	if appendMode {
		rs.Items = append(rs.Items, resp.Items...)
	} else {
		rs.Items = resp.Items
	}
	rs.Page = resp.Page
	rs.PageSize = resp.PageSize
	rs.HasMore = resp.HasMore
	rs.TotalCount = resp.TotalCount
	return true, nil
}
