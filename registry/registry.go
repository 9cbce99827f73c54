// Package registry tracks the set of distinct event origins observed
// by a console instance, for target discovery and autocomplete.
package registry

import (
	"sort"
	"sync"
)

// Registry is an idempotent set of origin strings. Entries are never
// removed when their events are evicted from the store: origins name
// code locations in the host application, a small and slowly-growing
// vocabulary, so the registry is unbounded for the process lifetime.
type Registry struct {
	mu      sync.RWMutex
	origins map[string]struct{}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{origins: make(map[string]struct{})}
}

// Record inserts origin into the set. Recording an origin that is
// already present is a no-op.
func (r *Registry) Record(origin string) {
	r.mu.Lock()
	r.origins[origin] = struct{}{}
	r.mu.Unlock()
}

// List returns all recorded origins sorted ascending.
func (r *Registry) List() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.origins))
	for origin := range r.origins {
		out = append(out, origin)
	}
	r.mu.RUnlock()

	sort.Strings(out)
	return out
}

// Len returns the number of distinct origins recorded so far.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.origins)
}
