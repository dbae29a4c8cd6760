package cache

import (
	"context"

	"github.com/evanofslack/dns-manager-sync/api"
	"github.com/evanofslack/dns-manager-sync/selection"
)

// BatchAddTags unions tags into every selected domain's tag set.
func (s *Store) BatchAddTags(ctx context.Context, tags []string) (api.BatchResult, error) {
	return s.batchApplyTags(ctx, tags, api.TagModeAdd)
}

// BatchRemoveTags removes tags from every selected domain's tag set.
func (s *Store) BatchRemoveTags(ctx context.Context, tags []string) (api.BatchResult, error) {
	return s.batchApplyTags(ctx, tags, api.TagModeRemove)
}

// BatchSetTags replaces every selected domain's tag set.
func (s *Store) BatchSetTags(ctx context.Context, tags []string) (api.BatchResult, error) {
	return s.batchApplyTags(ctx, tags, api.TagModeReplace)
}

// batchApplyTags executes one tag operation across the current cross-account
// domain selection in a single remote call, then reconciles per-item results
// back into the cache: targets absent from the failure list get the local
// transform applied, failed targets keep exactly their prior tags. The
// selection is cleared and batch mode exited unconditionally afterwards,
// even on partial failure; a transport-level failure of the whole call
// changes nothing and keeps the selection. Finally the active tag filter is
// pruned of tags no longer present anywhere, so the filter can never name a
// tag no domain carries.
func (s *Store) batchApplyTags(ctx context.Context, tags []string, mode api.TagMode) (api.BatchResult, error) {
	if mode != api.TagModeRemove {
		if err := validateTags(tags); err != nil {
			return api.BatchResult{}, err
		}
	}

	var targets []api.BatchTarget
	for _, key := range s.domainSel.Keys() {
		accountID, domainID, ok := selection.SplitKey(key)
		if !ok {
			continue
		}
		targets = append(targets, api.BatchTarget{AccountID: accountID, DomainID: domainID})
	}
	if len(targets) == 0 {
		return api.BatchResult{}, ErrEmptySelection
	}

	result, err := s.api.BatchTags(ctx, targets, tags, mode)
	if err != nil {
		return api.BatchResult{}, err
	}

	s.mu.Lock()
	for _, target := range targets {
		if result.Failed(target.AccountID, target.DomainID) {
			continue
		}
		s.transformTagsLocked(target.AccountID, target.DomainID, tags, mode)
	}
	s.pruneTagFilterLocked()
	s.persistLocked()
	s.mu.Unlock()

	s.domainSel.Exit()
	return result, nil
}

func (s *Store) transformTagsLocked(accountID, domainID string, tags []string, mode api.TagMode) {
	entry, ok := s.domains[accountID]
	if !ok {
		return
	}
	for i := range entry.Items {
		if entry.Items[i].ID != domainID {
			continue
		}
		meta := &entry.Items[i].Metadata
		switch mode {
		case api.TagModeAdd:
			meta.Tags = sortedUnion(meta.Tags, tags)
		case api.TagModeRemove:
			meta.Tags = difference(meta.Tags, tags)
		case api.TagModeReplace:
			meta.Tags = sortedDedup(tags)
		}
		now := s.now().Unix()
		meta.UpdatedAt = now
		entry.LastUpdated = now
		return
	}
}

func (s *Store) pruneTagFilterLocked() {
	index := s.tagIndexLocked()
	for tag := range s.tagFilter {
		if _, ok := index[tag]; !ok {
			delete(s.tagFilter, tag)
		}
	}
}
