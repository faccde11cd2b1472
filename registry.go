package splitframe

import (
	"fmt"
	"sort"
	"sync"
)

// BackendOptions are passed to a backend factory.
type BackendOptions struct {
	// Width and Height size the presentation surface.
	Width  int
	Height int

	// Profile is a backend-specific device description, for example the
	// per-device cost list of the simulated backend.
	Profile string
}

// BackendFactory opens a layer with the given options.
type BackendFactory func(opts BackendOptions) (Layer, error)

// BackendEntry is a registered backend.
type BackendEntry struct {
	// Name is the unique identifier for this backend.
	Name string

	// Priority determines selection order (higher = preferred).
	//   - 100: hardware backends (Vulkan)
	//   - 10: simulated backends
	Priority int

	// Factory opens the layer.
	Factory BackendFactory

	// Available reports if the backend can run on this system.
	Available func() bool
}

var globalRegistry = NewRegistry()

// Registry manages registered backends.
//
// Backends register themselves from init:
//
//	func init() {
//	    splitframe.Register("vulkan", 100, open, available)
//	}
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*BackendEntry
}

// NewRegistry creates an empty registry. Most code uses the global registry
// through Register and Open.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*BackendEntry)}
}

// Register adds a backend to the global registry. A nil available function
// means always available. Registering an existing name replaces it.
func Register(name string, priority int, factory BackendFactory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) { globalRegistry.Unregister(name) }

// Backends returns the registered backend names, highest priority first.
func Backends() []string { return globalRegistry.List() }

// AvailableBackends returns the available backend names, highest priority first.
func AvailableBackends() []string { return globalRegistry.Available() }

// Open opens the named backend from the global registry.
func Open(name string, opts BackendOptions) (Layer, error) {
	return globalRegistry.Open(name, opts)
}

// OpenBest opens the highest priority available backend that opens
// successfully.
func OpenBest(opts BackendOptions) (Layer, error) {
	return globalRegistry.OpenBest(opts)
}

// Register adds a backend to this registry.
func (r *Registry) Register(name string, priority int, factory BackendFactory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if available == nil {
		available = func() bool { return true }
	}
	r.entries[name] = &BackendEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a backend from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all backend names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(false)
}

// Available returns names of available backends sorted by priority.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(true)
}

// Open opens the named backend.
func (r *Registry) Open(name string, opts BackendOptions) (Layer, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	if !entry.Available() {
		return nil, fmt.Errorf("%w: %q", ErrBackendUnavailable, name)
	}
	return entry.Factory(opts)
}

// OpenBest tries available backends in priority order and returns the first
// that opens. The last failure is returned when none does.
func (r *Registry) OpenBest(opts BackendOptions) (Layer, error) {
	r.mu.RLock()
	names := r.sortedNames(true)
	r.mu.RUnlock()

	if len(names) == 0 {
		return nil, ErrNoBackendAvailable
	}
	var lastErr error
	for _, name := range names {
		layer, err := r.Open(name, opts)
		if err == nil {
			return layer, nil
		}
		Logger().Warn("backend failed to open", "backend", name, "err", err)
		lastErr = err
	}
	return nil, lastErr
}

// sortedNames returns names sorted by priority (highest first, then by name).
// Must be called with lock held.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	entries := make([]*BackendEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
