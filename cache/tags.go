package cache

import (
	"fmt"
	"sort"
)

func validateTags(tags []string) error {
	if len(tags) > MaxTags {
		return fmt.Errorf("%w: %d > %d", ErrTooManyTags, len(tags), MaxTags)
	}
	for _, tag := range tags {
		if tag == "" {
			return ErrEmptyTag
		}
		if len(tag) > MaxTagLength {
			return fmt.Errorf("%w: %q", ErrTagTooLong, tag[:MaxTagLength])
		}
	}
	return nil
}

// sortedDedup returns a sorted copy of tags with duplicates removed.
func sortedDedup(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// sortedUnion merges two tag sets into a sorted slice.
func sortedUnion(a, b []string) []string {
	return sortedDedup(append(append([]string{}, a...), b...))
}

// difference removes every tag in b from a, preserving sort order.
func difference(a, b []string) []string {
	drop := make(map[string]struct{}, len(b))
	for _, tag := range b {
		drop[tag] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, tag := range a {
		if _, ok := drop[tag]; ok {
			continue
		}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
