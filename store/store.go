// Package store holds the most recent events in a fixed-capacity,
// insertion-ordered ring buffer with oldest-first eviction.
package store

import (
	"sync"

	"github.com/traceview/traceview/event"
)

// Store is the single source of truth for captured events. A Store is
// safe for concurrent use by any number of producers and readers; each
// operation holds one short exclusive (or shared) section, so Push
// never blocks longer than a buffer slot assignment and never fails.
type Store struct {
	mu    sync.RWMutex
	buf   []event.Event
	head  int // index of the oldest entry
	count int
	seq   uint64
}

// New creates a store that retains up to capacity events. A capacity
// below 1 is clamped to 1 so a store always accepts a push.
func New(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{buf: make([]event.Event, capacity)}
}

// Push assigns the next sequence number to ev, appends it, and evicts
// the oldest entry if the store is over capacity. It returns the
// assigned sequence.
func (s *Store) Push(ev event.Event) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	ev.Sequence = s.seq

	if s.count < len(s.buf) {
		s.buf[(s.head+s.count)%len(s.buf)] = ev
		s.count++
	} else {
		s.buf[s.head] = ev
		s.head = (s.head + 1) % len(s.buf)
	}
	return ev.Sequence
}

// Snapshot returns a point-in-time copy of the store contents in
// insertion order. The copy is linearizable with respect to Push: it
// never contains a partial push and never omits a push that completed
// before Snapshot was called.
func (s *Store) Snapshot() []event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]event.Event, s.count)
	for i := 0; i < s.count; i++ {
		out[i] = s.buf[(s.head+i)%len(s.buf)]
	}
	return out
}

// Len returns the current number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Cap returns the configured capacity.
func (s *Store) Cap() int {
	return len(s.buf)
}
