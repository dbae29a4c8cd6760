package cache

import (
	"context"
	"fmt"

	"github.com/evanofslack/dns-manager-sync/api"
)

// UpdateMetadata applies a partial metadata edit. The remote call is issued
// first; the cache is then patched from the server's canonical response,
// never from the submitted partial value, so server-side normalization (tag
// dedup and sort, trimming) can never diverge from the cache. Exactly one
// item in one account's entry is touched; nothing is re-fetched.
func (s *Store) UpdateMetadata(ctx context.Context, accountID, domainID string, patch api.MetadataPatch) (api.Metadata, error) {
	if err := validatePatch(patch); err != nil {
		return api.Metadata{}, err
	}

	meta, err := s.api.UpdateMetadata(ctx, accountID, domainID, patch)
	if err != nil {
		return api.Metadata{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	meta = s.patchDomainLocked(accountID, domainID, meta)
	s.persistLocked()
	return meta, nil
}

// ToggleFavorite flips the favorite flag through the metadata pipeline and
// returns the server-confirmed state.
func (s *Store) ToggleFavorite(ctx context.Context, accountID, domainID string) (bool, error) {
	current, _ := s.SelectedDomain(accountID, domainID)
	desired := !current.Metadata.IsFavorite

	meta, err := s.UpdateMetadata(ctx, accountID, domainID, api.MetadataPatch{IsFavorite: &desired})
	if err != nil {
		return false, err
	}
	return meta.IsFavorite, nil
}

// AddTag appends one tag to a domain's tag set.
func (s *Store) AddTag(ctx context.Context, accountID, domainID, tag string) (api.Metadata, error) {
	current, _ := s.SelectedDomain(accountID, domainID)
	return s.SetTags(ctx, accountID, domainID, sortedUnion(current.Metadata.Tags, []string{tag}))
}

// RemoveTag drops one tag from a domain's tag set.
func (s *Store) RemoveTag(ctx context.Context, accountID, domainID, tag string) (api.Metadata, error) {
	current, _ := s.SelectedDomain(accountID, domainID)
	return s.SetTags(ctx, accountID, domainID, difference(current.Metadata.Tags, []string{tag}))
}

// SetTags replaces a domain's tag set.
func (s *Store) SetTags(ctx context.Context, accountID, domainID string, tags []string) (api.Metadata, error) {
	tags = sortedDedup(tags)
	return s.UpdateMetadata(ctx, accountID, domainID, api.MetadataPatch{Tags: &tags})
}

// SetNote replaces a domain's note.
func (s *Store) SetNote(ctx context.Context, accountID, domainID, note string) (api.Metadata, error) {
	return s.UpdateMetadata(ctx, accountID, domainID, api.MetadataPatch{Note: &note})
}

// SetColor assigns a domain's color label.
func (s *Store) SetColor(ctx context.Context, accountID, domainID string, color api.Color) (api.Metadata, error) {
	return s.UpdateMetadata(ctx, accountID, domainID, api.MetadataPatch{Color: &color})
}

// patchDomainLocked writes server-confirmed metadata into the one affected
// item. FavoritedAt is the only locally owned field: it is filled on the
// first ever transition to favorite and never overwritten or cleared after
// that, so a favorites view can keep its recency order across un-favoriting.
func (s *Store) patchDomainLocked(accountID, domainID string, meta api.Metadata) api.Metadata {
	entry, ok := s.domains[accountID]
	if !ok {
		return meta
	}
	for i := range entry.Items {
		if entry.Items[i].ID != domainID {
			continue
		}
		prev := entry.Items[i].Metadata
		if meta.IsFavorite && prev.FavoritedAt == 0 {
			meta.FavoritedAt = s.now().Unix()
		} else {
			meta.FavoritedAt = prev.FavoritedAt
		}
		entry.Items[i].Metadata = meta
		entry.LastUpdated = s.now().Unix()
		break
	}
	return meta
}

// validatePatch rejects limit violations before any network call; the cache
// is untouched on rejection.
func validatePatch(patch api.MetadataPatch) error {
	if patch.Tags != nil {
		if err := validateTags(*patch.Tags); err != nil {
			return err
		}
	}
	if patch.Note != nil && len(*patch.Note) > MaxNoteLength {
		return fmt.Errorf("%w: %d > %d", ErrNoteTooLong, len(*patch.Note), MaxNoteLength)
	}
	if patch.Color != nil && !patch.Color.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownColor, *patch.Color)
	}
	return nil
}
