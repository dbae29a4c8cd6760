package selection

import (
	"reflect"
	"testing"
)

func TestBatchModeClearsSelection(t *testing.T) {
	s := New()

	if s.BatchMode() {
		t.Fatal("expected batch mode off initially")
	}
	if s.Toggle("a") {
		t.Error("toggle outside batch mode must be a no-op")
	}
	if s.Len() != 0 {
		t.Error("selection must stay empty outside batch mode")
	}

	if !s.ToggleBatchMode() {
		t.Fatal("expected batch mode on")
	}
	s.Toggle("a")
	s.Toggle("b")
	if s.Len() != 2 {
		t.Fatalf("expected 2 selected, got %d", s.Len())
	}

	// Turning batch mode off always empties the set.
	if s.ToggleBatchMode() {
		t.Fatal("expected batch mode off")
	}
	if s.Len() != 0 {
		t.Error("expected selection cleared when leaving batch mode")
	}

	// And turning it back on starts empty too.
	s.ToggleBatchMode()
	if s.Len() != 0 {
		t.Error("expected empty selection entering batch mode")
	}
}

func TestToggleFlipsMembership(t *testing.T) {
	s := New()
	s.ToggleBatchMode()

	if !s.Toggle("a") {
		t.Error("expected first toggle to select")
	}
	if !s.Contains("a") {
		t.Error("expected a selected")
	}
	if s.Toggle("a") {
		t.Error("expected second toggle to deselect")
	}
	if s.Contains("a") {
		t.Error("expected a deselected")
	}
}

func TestSelectAllAndExit(t *testing.T) {
	s := New()

	if s.SelectAll([]string{"a", "b"}) != 0 {
		t.Error("select all outside batch mode must be a no-op")
	}

	s.ToggleBatchMode()
	s.Toggle("c")
	if got := s.SelectAll([]string{"a", "b"}); got != 3 {
		t.Errorf("expected 3 selected, got %d", got)
	}
	if got, want := s.Keys(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}

	s.Exit()
	if s.BatchMode() || s.Len() != 0 {
		t.Error("expected exit to leave batch mode and clear the set")
	}
}

func TestKeyRoundTrip(t *testing.T) {
	key := Key("acct-1", "d1")
	if key != "acct-1::d1" {
		t.Errorf("key = %q", key)
	}
	accountID, domainID, ok := SplitKey(key)
	if !ok || accountID != "acct-1" || domainID != "d1" {
		t.Errorf("split = %q %q %v", accountID, domainID, ok)
	}

	for _, bad := range []string{"", "::", "a::", "::b", "plain"} {
		if _, _, ok := SplitKey(bad); ok {
			t.Errorf("expected split of %q to fail", bad)
		}
	}
}
