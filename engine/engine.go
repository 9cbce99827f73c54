// Package engine evaluates filter specifications against store
// snapshots: severity gating with per-origin overrides, substring
// filters, ordering, and pagination.
package engine

import (
	"strings"

	"github.com/traceview/traceview/event"
)

// SortOrder controls the ordering of a query result page.
type SortOrder int

const (
	// NewestFirst orders the page by descending sequence.
	NewestFirst SortOrder = iota
	// OldestFirst orders the page by ascending sequence.
	OldestFirst
)

// Filter is the query input. It is supplied per query and never
// persisted.
//
// Limit follows the wire contract: a negative Limit means no paging
// bound (return everything past Offset), while Limit == 0 returns an
// empty page with a real Total, for count-only queries.
type Filter struct {
	// MinLevel is the global severity threshold. Events below it are
	// excluded unless an origin override applies.
	MinLevel event.Level
	// TargetLevels maps origin prefixes to override thresholds. The
	// longest matching prefix wins over shorter ones and over MinLevel.
	TargetLevels map[string]event.Level
	// Target, when non-empty, keeps only events whose origin contains
	// it (case-insensitive).
	Target string
	// Search, when non-empty, keeps only events whose message contains
	// it (case-insensitive).
	Search string

	Sort   SortOrder
	Offset int
	Limit  int
}

// Result is a filtered, ordered page of events plus the total number
// of store entries matching the filter regardless of paging.
type Result struct {
	Page  []event.Event
	Total int
}

// EffectiveLevel resolves the severity threshold that applies to
// origin: the override with the longest matching prefix, or the global
// minimum when no override matches. A prefix matches when it equals
// the origin or is a proper prefix followed by the origin delimiter,
// so an override for "svc" never captures "svc2".
func EffectiveLevel(f Filter, origin string) event.Level {
	level := f.MinLevel
	bestLen := -1
	for prefix, override := range f.TargetLevels {
		if origin != prefix && !strings.HasPrefix(origin, prefix+event.OriginDelimiter) {
			continue
		}
		if len(prefix) > bestLen {
			bestLen = len(prefix)
			level = override
		}
	}
	return level
}

// Matches reports whether ev passes every clause of the filter.
func Matches(ev event.Event, f Filter) bool {
	if ev.Level < EffectiveLevel(f, ev.Origin) {
		return false
	}
	if f.Target != "" && !containsFold(ev.Origin, f.Target) {
		return false
	}
	if f.Search != "" && !containsFold(ev.Message, f.Search) {
		return false
	}
	return true
}

// Run applies f to an insertion-ordered snapshot. The snapshot is
// already sorted by sequence, so ordering is a reversal at most and
// the whole query is one O(len(snapshot)) pass.
func Run(snapshot []event.Event, f Filter) Result {
	matched := make([]event.Event, 0, len(snapshot))
	for _, ev := range snapshot {
		if Matches(ev, f) {
			matched = append(matched, ev)
		}
	}
	total := len(matched)

	if f.Sort == NewestFirst {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	if f.Limit == 0 || offset >= total {
		return Result{Page: []event.Event{}, Total: total}
	}
	end := total
	if f.Limit > 0 && offset+f.Limit < end {
		end = offset + f.Limit
	}
	return Result{Page: matched[offset:end], Total: total}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
