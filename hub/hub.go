// Package hub fans newly captured events out to live subscribers.
// Publishing is non-blocking with respect to the capture path: every
// subscriber owns a bounded queue, a full queue drops its oldest
// undelivered event, and a subscriber that keeps falling behind is
// forcibly unsubscribed so it cannot penalize healthy ones.
package hub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/traceview/traceview/event"
)

const (
	// DefaultQueueSize is the per-subscriber delivery queue bound.
	DefaultQueueSize = 256
	// DefaultMaxConsecutiveDrops is the slow-consumer eviction
	// threshold: a subscriber whose queue overflows this many times in
	// a row is closed.
	DefaultMaxConsecutiveDrops = 64
)

// Hub delivers published events to a dynamic set of subscribers.
type Hub struct {
	mu       sync.RWMutex
	subs     map[string]*Subscription
	queue    int
	maxDrops int
	closed   bool
}

// New creates a hub whose subscribers buffer up to queueSize events
// and are evicted after maxConsecutiveDrops overflows in a row.
// Non-positive arguments fall back to the defaults.
func New(queueSize, maxConsecutiveDrops int) *Hub {
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	if maxConsecutiveDrops < 1 {
		maxConsecutiveDrops = DefaultMaxConsecutiveDrops
	}
	return &Hub{
		subs:     make(map[string]*Subscription),
		queue:    queueSize,
		maxDrops: maxConsecutiveDrops,
	}
}

// Subscription is one live observer's delivery queue. Receive from C;
// the channel is closed on Unsubscribe, on slow-consumer eviction, and
// on hub shutdown.
type Subscription struct {
	id string

	mu     sync.Mutex
	ch     chan event.Event
	closed bool
	lagged uint64
	drops  int
}

// C returns the delivery channel. Events arrive in publish order.
func (s *Subscription) C() <-chan event.Event {
	return s.ch
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Lagged returns how many events were dropped for this subscriber
// because its queue was full.
func (s *Subscription) Lagged() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lagged
}

// offer enqueues ev without blocking. When the queue is full the
// oldest undelivered event is dropped, not the newest. Reports whether
// the subscriber crossed the consecutive-drop threshold.
func (s *Subscription) offer(ev event.Event, maxDrops int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	select {
	case s.ch <- ev:
		s.drops = 0
		return false
	default:
	}

	// Queue full: make room by discarding the oldest entry.
	select {
	case <-s.ch:
	default:
	}
	s.lagged++
	s.drops++
	select {
	case s.ch <- ev:
	default:
		// The consumer raced us for the freed slot and the queue is
		// full again; ev counts as dropped too.
		s.lagged++
	}
	return s.drops >= maxDrops
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Subscribe registers a new subscriber with its own delivery queue.
// Subscribing to a closed hub yields an already-closed subscription.
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{
		id: uuid.NewString(),
		ch: make(chan event.Event, h.queue),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		s.close()
		return s
	}
	h.subs[s.id] = s
	h.mu.Unlock()
	return s
}

// Unsubscribe removes s and closes its channel. It is idempotent and
// safe to call concurrently with Publish.
func (h *Hub) Unsubscribe(s *Subscription) {
	if s == nil {
		return
	}
	h.mu.Lock()
	delete(h.subs, s.id)
	h.mu.Unlock()
	s.close()
}

// Publish enqueues ev to every live subscriber. It never blocks on a
// slow consumer: work on the caller is O(number of subscribers) plus
// one short per-subscriber exclusive section.
func (h *Hub) Publish(ev event.Event) {
	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	var evicted []*Subscription
	for _, s := range subs {
		if s.offer(ev, h.maxDrops) {
			evicted = append(evicted, s)
		}
	}
	for _, s := range evicted {
		h.Unsubscribe(s)
	}
}

// Len returns the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close evicts every subscriber and rejects future subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := make([]*Subscription, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.subs = make(map[string]*Subscription)
	h.mu.Unlock()

	for _, s := range subs {
		s.close()
	}
}
