package scrape

import (
	"sort"
	"sync"
)

// Registry tracks which handles are being scraped right now, so concurrent
// requests for the same user collapse into one scrape.
type Registry struct {
	mu     sync.Mutex
	active map[string]bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[string]bool)}
}

// Begin marks a handle as being scraped. Returns false when a scrape for the
// handle is already running.
func (r *Registry) Begin(handle string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active[handle] {
		return false
	}
	r.active[handle] = true
	return true
}

// End clears a handle once its scrape finishes, successfully or not.
func (r *Registry) End(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, handle)
}

// Active lists the handles currently being scraped, sorted for stable output.
func (r *Registry) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	handles := make([]string, 0, len(r.active))
	for handle := range r.active {
		handles = append(handles, handle)
	}
	sort.Strings(handles)
	return handles
}
