package cache

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/evanofslack/dns-manager-sync/api"
	"github.com/evanofslack/dns-manager-sync/selection"
)

// batchResponder reports the listed targets as failures and the rest as
// successes, like the metadata service does.
func batchResponder(failing ...api.BatchTarget) func(targets []api.BatchTarget, tags []string, mode api.TagMode) (api.BatchResult, error) {
	return func(targets []api.BatchTarget, tags []string, mode api.TagMode) (api.BatchResult, error) {
		result := api.BatchResult{}
		for _, target := range targets {
			failed := false
			for _, f := range failing {
				if f == target {
					failed = true
					break
				}
			}
			if failed {
				result.FailedCount++
				result.Failures = append(result.Failures, api.BatchFailure{
					AccountID: target.AccountID,
					DomainID:  target.DomainID,
					Reason:    api.ReasonProviderError,
				})
			} else {
				result.SuccessCount++
			}
		}
		return result, nil
	}
}

func selectDomains(t *testing.T, s *Store, keys ...string) {
	t.Helper()
	if !s.DomainSelection().ToggleBatchMode() {
		t.Fatal("expected batch mode on")
	}
	for _, key := range keys {
		if !s.DomainSelection().Toggle(key) {
			t.Fatalf("failed to select %s", key)
		}
	}
}

func TestBatchReconciliationPartition(t *testing.T) {
	mock := &mockAPI{}
	mock.updateFn = echoMetadata(map[string]api.Metadata{})
	mock.batchFn = batchResponder(api.BatchTarget{AccountID: "acct-1", DomainID: "d001"})
	s := newTestStore(t, mock, cloudflareCaps)
	seedDomains(t, s, mock, "acct-1", 3)
	ctx := context.Background()

	// Y (d001) starts with a tag so we can see it stay untouched.
	if _, err := s.SetTags(ctx, "acct-1", "d001", []string{"legacy"}); err != nil {
		t.Fatalf("SetTags failed: %v", err)
	}

	selectDomains(t, s,
		selection.Key("acct-1", "d000"),
		selection.Key("acct-1", "d001"),
		selection.Key("acct-1", "d002"),
	)

	result, err := s.BatchAddTags(ctx, []string{"prod"})
	if err != nil {
		t.Fatalf("BatchAddTags failed: %v", err)
	}
	if result.SuccessCount != 2 || result.FailedCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", result.SuccessCount, result.FailedCount)
	}

	for _, tt := range []struct {
		domainID string
		want     []string
	}{
		{"d000", []string{"prod"}},
		{"d001", []string{"legacy"}}, // failed target keeps prior tags
		{"d002", []string{"prod"}},
	} {
		d, _ := s.SelectedDomain("acct-1", tt.domainID)
		if !reflect.DeepEqual(d.Metadata.Tags, tt.want) {
			t.Errorf("%s tags = %v, want %v", tt.domainID, d.Metadata.Tags, tt.want)
		}
	}

	// Batch mode is exited and selection cleared even on partial failure.
	if s.DomainSelection().BatchMode() || s.DomainSelection().Len() != 0 {
		t.Error("expected selection cleared and batch mode off")
	}
}

func TestBatchAddAcrossAccounts(t *testing.T) {
	mock := &mockAPI{}
	mock.updateFn = echoMetadata(map[string]api.Metadata{})
	mock.batchFn = batchResponder()
	s := newTestStore(t, mock, cloudflareCaps)
	seedDomains(t, s, mock, "acct-1", 2)
	ctx := context.Background()

	// Prior tags so the union is visible.
	if _, err := s.SetTags(ctx, "acct-1", "d000", []string{"us"}); err != nil {
		t.Fatalf("SetTags failed: %v", err)
	}

	selectDomains(t, s,
		selection.Key("acct-1", "d000"),
		selection.Key("acct-1", "d001"),
	)

	result, err := s.BatchAddTags(ctx, []string{"prod", "eu"})
	if err != nil {
		t.Fatalf("BatchAddTags failed: %v", err)
	}
	if result.SuccessCount != 2 || result.FailedCount != 0 {
		t.Errorf("counts = %d/%d, want 2/0", result.SuccessCount, result.FailedCount)
	}

	d0, _ := s.SelectedDomain("acct-1", "d000")
	if want := []string{"eu", "prod", "us"}; !reflect.DeepEqual(d0.Metadata.Tags, want) {
		t.Errorf("d000 tags = %v, want sorted union %v", d0.Metadata.Tags, want)
	}
	d1, _ := s.SelectedDomain("acct-1", "d001")
	if want := []string{"eu", "prod"}; !reflect.DeepEqual(d1.Metadata.Tags, want) {
		t.Errorf("d001 tags = %v, want %v", d1.Metadata.Tags, want)
	}
	if s.DomainSelection().BatchMode() || s.DomainSelection().Len() != 0 {
		t.Error("expected selection cleared and batch mode off")
	}
}

func TestBatchRemoveAndReplace(t *testing.T) {
	mock := &mockAPI{}
	mock.updateFn = echoMetadata(map[string]api.Metadata{})
	mock.batchFn = batchResponder()
	s := newTestStore(t, mock, cloudflareCaps)
	seedDomains(t, s, mock, "acct-1", 2)
	ctx := context.Background()

	if _, err := s.SetTags(ctx, "acct-1", "d000", []string{"eu", "prod", "web"}); err != nil {
		t.Fatalf("SetTags failed: %v", err)
	}

	selectDomains(t, s, selection.Key("acct-1", "d000"))
	if _, err := s.BatchRemoveTags(ctx, []string{"prod"}); err != nil {
		t.Fatalf("BatchRemoveTags failed: %v", err)
	}
	d, _ := s.SelectedDomain("acct-1", "d000")
	if want := []string{"eu", "web"}; !reflect.DeepEqual(d.Metadata.Tags, want) {
		t.Errorf("after remove: tags = %v, want %v", d.Metadata.Tags, want)
	}

	selectDomains(t, s, selection.Key("acct-1", "d000"))
	if _, err := s.BatchSetTags(ctx, []string{"z", "a", "z"}); err != nil {
		t.Fatalf("BatchSetTags failed: %v", err)
	}
	d, _ = s.SelectedDomain("acct-1", "d000")
	if want := []string{"a", "z"}; !reflect.DeepEqual(d.Metadata.Tags, want) {
		t.Errorf("after replace: tags = %v, want %v", d.Metadata.Tags, want)
	}
}

func TestBatchReplacePrunesTagFilter(t *testing.T) {
	mock := &mockAPI{}
	mock.updateFn = echoMetadata(map[string]api.Metadata{})
	mock.batchFn = batchResponder()
	s := newTestStore(t, mock, cloudflareCaps)
	seedDomains(t, s, mock, "acct-1", 2)
	ctx := context.Background()

	// "prod" exists only on d000 and is actively filtered on.
	if _, err := s.SetTags(ctx, "acct-1", "d000", []string{"prod"}); err != nil {
		t.Fatalf("SetTags failed: %v", err)
	}
	s.ToggleTagFilter("prod")
	s.ToggleTagFilter("staging")

	selectDomains(t, s, selection.Key("acct-1", "d000"))
	if _, err := s.BatchSetTags(ctx, []string{"staging"}); err != nil {
		t.Fatalf("BatchSetTags failed: %v", err)
	}

	// The replace removed the last occurrence of "prod"; the filter must
	// drop it but keep "staging", which is still in the index.
	if got, want := s.ActiveTagFilters(), []string{"staging"}; !reflect.DeepEqual(got, want) {
		t.Errorf("active tag filters = %v, want %v", got, want)
	}
}

func TestBatchTransportFailureChangesNothing(t *testing.T) {
	mock := &mockAPI{}
	mock.updateFn = echoMetadata(map[string]api.Metadata{})
	mock.batchFn = func([]api.BatchTarget, []string, api.TagMode) (api.BatchResult, error) {
		return api.BatchResult{}, errors.New("network unreachable")
	}
	s := newTestStore(t, mock, cloudflareCaps)
	seedDomains(t, s, mock, "acct-1", 1)
	ctx := context.Background()

	selectDomains(t, s, selection.Key("acct-1", "d000"))
	if _, err := s.BatchAddTags(ctx, []string{"prod"}); err == nil {
		t.Fatal("expected error")
	}

	d, _ := s.SelectedDomain("acct-1", "d000")
	if len(d.Metadata.Tags) != 0 {
		t.Errorf("tags = %v, want unchanged empty set", d.Metadata.Tags)
	}
	// Whole-call failure: nothing changed, so the selection is retained for
	// a retry.
	if !s.DomainSelection().BatchMode() || s.DomainSelection().Len() != 1 {
		t.Error("expected selection retained after transport failure")
	}
}

func TestBatchEmptySelection(t *testing.T) {
	s := newTestStore(t, &mockAPI{}, cloudflareCaps)
	if _, err := s.BatchAddTags(context.Background(), []string{"prod"}); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("expected ErrEmptySelection, got %v", err)
	}
}
