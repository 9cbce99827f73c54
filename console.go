// Package traceview is an embeddable, in-process event-telemetry
// console. A Console captures structured events emitted by the host
// application, retains the most recent ones in a bounded store,
// answers filtered and paginated queries, and live-streams new events
// to subscribers. It is meant to be constructed once at host startup
// and exposed through the host's own network layer (see the api
// subpackage for the HTTP/WebSocket binding).
package traceview

import (
	"time"

	"github.com/traceview/traceview/engine"
	"github.com/traceview/traceview/event"
	"github.com/traceview/traceview/hub"
	"github.com/traceview/traceview/registry"
	"github.com/traceview/traceview/store"
)

// Console is the capture-store-query-stream core. Construct it with
// New and pass the instance to every handler that needs it; there is
// no package-level singleton.
type Console struct {
	opts     Options
	store    *store.Store
	registry *registry.Registry
	hub      *hub.Hub
}

// New creates a console with the given options. Zero option fields
// fall back to their defaults.
func New(opts Options) *Console {
	opts = opts.withDefaults()
	return &Console{
		opts:     opts,
		store:    store.New(opts.Capacity),
		registry: registry.New(),
		hub:      hub.New(opts.StreamBuffer, opts.StreamMaxDrops),
	}
}

// Capture records one event. It is fire-and-forget: it never returns
// an error to the producer and never blocks beyond the store's and the
// hub's short exclusive sections. Oversized field sets are truncated
// best-effort rather than rejected.
func (c *Console) Capture(level event.Level, origin, message string, fields event.Fields, scope *event.Scope) {
	ev := event.Event{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Origin:    origin,
		Message:   message,
		Fields:    c.truncate(fields),
	}
	if scope != nil {
		ev.Scope = &event.Scope{
			Name:   scope.Name,
			Fields: c.truncate(scope.Fields),
		}
	}

	ev.Sequence = c.store.Push(ev)
	c.registry.Record(origin)
	c.hub.Publish(ev)
}

// Query runs a filter against a point-in-time snapshot of the store.
func (c *Console) Query(f engine.Filter) engine.Result {
	return engine.Run(c.store.Snapshot(), f)
}

// Targets lists every distinct origin observed so far, sorted
// ascending. Origins stay listed even after their events are evicted.
func (c *Console) Targets() []string {
	return c.registry.List()
}

// Subscribe registers a live stream observer. The caller must
// Unsubscribe when done (typically on transport disconnect).
func (c *Console) Subscribe() *hub.Subscription {
	return c.hub.Subscribe()
}

// Unsubscribe removes a live stream observer.
func (c *Console) Unsubscribe(s *hub.Subscription) {
	c.hub.Unsubscribe(s)
}

// Subscribers returns the number of live stream observers.
func (c *Console) Subscribers() int {
	return c.hub.Len()
}

// Len returns the number of currently retained events.
func (c *Console) Len() int {
	return c.store.Len()
}

// Close tears down the live stream hub. Capture and Query remain
// usable; Close only disconnects subscribers, for host shutdown.
func (c *Console) Close() {
	c.hub.Close()
}

// truncate enforces the field-set bounds from Options. The producer's
// slice is never mutated; a copy is taken only when a bound is
// exceeded.
func (c *Console) truncate(fields event.Fields) event.Fields {
	copied := false
	if len(fields) > c.opts.MaxFields {
		fields = append(event.Fields(nil), fields[:c.opts.MaxFields]...)
		copied = true
	}
	for i, kv := range fields {
		if len(kv.Value) <= c.opts.MaxFieldValueLen {
			continue
		}
		if !copied {
			fields = append(event.Fields(nil), fields...)
			copied = true
		}
		fields[i].Value = kv.Value[:c.opts.MaxFieldValueLen]
	}
	return fields
}
