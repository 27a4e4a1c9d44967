package breaker

import (
	"sort"
	"sync"
)

// Registry hands out circuit breakers keyed by dependency name. The first
// request for a name creates the breaker with the registry's shared
// settings; later requests return the same instance, so every caller
// touching a dependency shares its failure state.
type Registry struct {
	settings Settings
	opts     []Option

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewRegistry creates a registry whose breakers use the given settings and
// options.
func NewRegistry(settings Settings, opts ...Option) *Registry {
	return &Registry{
		settings: settings.normalize(),
		opts:     opts,
		breakers: make(map[string]*Breaker),
	}
}

// Get returns the breaker for the named dependency, creating it on first
// use.
func (r *Registry) Get(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[name]; ok {
		return b
	}
	b := New(name, r.settings, r.opts...)
	r.breakers[name] = b
	return b
}

// Snapshot returns the state of every breaker created so far, sorted by
// dependency name.
func (r *Registry) Snapshot() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snaps := make([]Snapshot, 0, len(r.breakers))
	for _, b := range r.breakers {
		snaps = append(snaps, b.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Name < snaps[j].Name })
	return snaps
}
