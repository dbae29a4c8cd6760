package cache

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/evanofslack/dns-manager-sync/api"
)

// echoMetadata simulates the metadata service: it normalizes tags the way
// the server does and returns the canonical result.
func echoMetadata(store map[string]api.Metadata) func(accountID, domainID string, patch api.MetadataPatch) (api.Metadata, error) {
	return func(accountID, domainID string, patch api.MetadataPatch) (api.Metadata, error) {
		meta := store[domainID]
		if patch.IsFavorite != nil {
			meta.IsFavorite = *patch.IsFavorite
		}
		if patch.Tags != nil {
			meta.Tags = sortedDedup(*patch.Tags)
		}
		if patch.Color != nil {
			meta.Color = *patch.Color
		}
		if patch.Note != nil {
			meta.Note = strings.TrimSpace(*patch.Note)
		}
		meta.UpdatedAt = 1700000999
		store[domainID] = meta
		return meta, nil
	}
}

func seedDomains(t *testing.T, s *Store, mock *mockAPI, accountID string, n int) {
	t.Helper()
	mock.mu.Lock()
	mock.listDomainsFn = domainLister(n)
	mock.mu.Unlock()
	if err := s.RefreshAccount(context.Background(), accountID); err != nil {
		t.Fatalf("seed refresh failed: %v", err)
	}
}

func TestUpdateMetadataUsesServerValue(t *testing.T) {
	mock := &mockAPI{}
	mock.updateFn = echoMetadata(map[string]api.Metadata{})
	s := newTestStore(t, mock, cloudflareCaps)
	seedDomains(t, s, mock, "acct-1", 3)

	// Submit unsorted duplicated tags; the cache must hold the server's
	// normalized value, not the submitted one.
	tags := []string{"prod", "eu", "prod"}
	meta, err := s.SetTags(context.Background(), "acct-1", "d001", tags)
	if err != nil {
		t.Fatalf("SetTags failed: %v", err)
	}
	want := []string{"eu", "prod"}
	if !reflect.DeepEqual(meta.Tags, want) {
		t.Errorf("returned tags = %v, want %v", meta.Tags, want)
	}

	cached, _ := s.SelectedDomain("acct-1", "d001")
	if !reflect.DeepEqual(cached.Metadata, meta) {
		t.Errorf("cached metadata = %+v, want exactly the server value %+v", cached.Metadata, meta)
	}
}

func TestUpdateMetadataErrorLeavesCacheUntouched(t *testing.T) {
	mock := &mockAPI{}
	mock.updateFn = func(string, string, api.MetadataPatch) (api.Metadata, error) {
		return api.Metadata{}, errors.New("service unavailable")
	}
	s := newTestStore(t, mock, cloudflareCaps)
	seedDomains(t, s, mock, "acct-1", 1)

	before, _ := s.SelectedDomain("acct-1", "d000")
	if _, err := s.SetNote(context.Background(), "acct-1", "d000", "hello"); err == nil {
		t.Fatal("expected error")
	}
	after, _ := s.SelectedDomain("acct-1", "d000")
	if !reflect.DeepEqual(before, after) {
		t.Error("cache must be untouched after a failed mutation")
	}
}

func TestFavoritedAtWriteOnce(t *testing.T) {
	mock := &mockAPI{}
	mock.updateFn = echoMetadata(map[string]api.Metadata{})
	s := newTestStore(t, mock, cloudflareCaps)
	seedDomains(t, s, mock, "acct-1", 1)

	clock := int64(1700000000)
	s.now = func() time.Time { return time.Unix(clock, 0) }
	ctx := context.Background()

	// First favoriting stamps favoritedAt.
	fav, err := s.ToggleFavorite(ctx, "acct-1", "d000")
	if err != nil || !fav {
		t.Fatalf("first toggle: fav=%v err=%v", fav, err)
	}
	d, _ := s.SelectedDomain("acct-1", "d000")
	if d.Metadata.FavoritedAt != 1700000000 {
		t.Fatalf("favoritedAt = %d, want 1700000000", d.Metadata.FavoritedAt)
	}

	// Un-favoriting and re-favoriting later must not move it.
	clock = 1700005000
	if fav, err = s.ToggleFavorite(ctx, "acct-1", "d000"); err != nil || fav {
		t.Fatalf("second toggle: fav=%v err=%v", fav, err)
	}
	d, _ = s.SelectedDomain("acct-1", "d000")
	if d.Metadata.FavoritedAt != 1700000000 {
		t.Errorf("favoritedAt after un-favorite = %d, want 1700000000", d.Metadata.FavoritedAt)
	}

	clock = 1700009000
	if fav, err = s.ToggleFavorite(ctx, "acct-1", "d000"); err != nil || !fav {
		t.Fatalf("third toggle: fav=%v err=%v", fav, err)
	}
	d, _ = s.SelectedDomain("acct-1", "d000")
	if d.Metadata.FavoritedAt != 1700000000 {
		t.Errorf("favoritedAt after re-favorite = %d, want first value 1700000000", d.Metadata.FavoritedAt)
	}
}

func TestValidationRejectsBeforeNetwork(t *testing.T) {
	mock := &mockAPI{}
	s := newTestStore(t, mock, cloudflareCaps)
	seedDomains(t, s, mock, "acct-1", 1)
	ctx := context.Background()

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{
			name: "too many tags",
			run: func() error {
				tags := make([]string, MaxTags+1)
				for i := range tags {
					tags[i] = "t"
				}
				_, err := s.SetTags(ctx, "acct-1", "d000", tags)
				return err
			},
			wantErr: ErrTooManyTags,
		},
		{
			name: "tag too long",
			run: func() error {
				_, err := s.SetTags(ctx, "acct-1", "d000", []string{strings.Repeat("x", MaxTagLength+1)})
				return err
			},
			wantErr: ErrTagTooLong,
		},
		{
			name: "empty tag",
			run: func() error {
				_, err := s.SetTags(ctx, "acct-1", "d000", []string{""})
				return err
			},
			wantErr: ErrEmptyTag,
		},
		{
			name: "note too long",
			run: func() error {
				_, err := s.SetNote(ctx, "acct-1", "d000", strings.Repeat("x", MaxNoteLength+1))
				return err
			},
			wantErr: ErrNoteTooLong,
		},
		{
			name: "unknown color",
			run: func() error {
				_, err := s.SetColor(ctx, "acct-1", "d000", api.Color("magenta"))
				return err
			},
			wantErr: ErrUnknownColor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	mock.mu.Lock()
	defer mock.mu.Unlock()
	if mock.updateCalls != 0 {
		t.Errorf("validation failures must not reach the network, saw %d calls", mock.updateCalls)
	}
}

func TestMetadataSurvivesRefresh(t *testing.T) {
	mock := &mockAPI{}
	mock.updateFn = echoMetadata(map[string]api.Metadata{})
	s := newTestStore(t, mock, cloudflareCaps)
	seedDomains(t, s, mock, "acct-1", 3)
	ctx := context.Background()

	if _, err := s.SetTags(ctx, "acct-1", "d001", []string{"prod"}); err != nil {
		t.Fatalf("SetTags failed: %v", err)
	}

	// Provider listings carry no metadata; a refresh must not wipe it.
	if err := s.RefreshAccount(ctx, "acct-1"); err != nil {
		t.Fatalf("RefreshAccount failed: %v", err)
	}
	d, _ := s.SelectedDomain("acct-1", "d001")
	if !reflect.DeepEqual(d.Metadata.Tags, []string{"prod"}) {
		t.Errorf("metadata lost across refresh: %+v", d.Metadata)
	}
}
