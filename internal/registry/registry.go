// Package registry tracks the template modules discovered by the scanner and
// notifies watchers when they change.
package registry

import (
	"sort"
	"sync"
	"time"
)

// Module is one template file and the route it serves.
type Module struct {
	// Name is the component identifier generated for the template.
	Name string `json:"name" yaml:"name"`
	// Route is the URL path, e.g. "/blog/:id".
	Route string `json:"route" yaml:"route"`
	// FilePath is the template path as found on disk; it identifies the module.
	FilePath string `json:"file" yaml:"file"`
	// OutputPath is the compiled module path relative to the output directory.
	OutputPath string    `json:"output" yaml:"output"`
	Hash       string    `json:"hash" yaml:"hash"`
	Size       int64     `json:"size" yaml:"size"`
	LastMod    time.Time `json:"last_mod" yaml:"last_mod"`
}

// EventType represents the type of module event
type EventType int

const (
	EventAdded EventType = iota
	EventUpdated
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventUpdated:
		return "updated"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event represents a change in the registry
type Event struct {
	Type      EventType
	Module    *Module
	Timestamp time.Time
}

// Registry manages all discovered modules
type Registry struct {
	modules  map[string]*Module
	mutex    sync.RWMutex
	watchers []chan Event
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		modules: make(map[string]*Module),
	}
}

// Register adds or updates a module. Re-registering a module with an
// unchanged hash and route is a no-op and reports false.
func (r *Registry) Register(module *Module) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := EventAdded
	if existing, exists := r.modules[module.FilePath]; exists {
		if existing.Hash == module.Hash && existing.Route == module.Route {
			return false
		}
		eventType = EventUpdated
	}

	r.modules[module.FilePath] = module
	r.notify(Event{Type: eventType, Module: module, Timestamp: time.Now()})
	return true
}

// Get retrieves a module by file path.
func (r *Registry) Get(path string) (*Module, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	module, exists := r.modules[path]
	return module, exists
}

// ByRoute returns the module serving route.
func (r *Registry) ByRoute(route string) (*Module, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, module := range r.modules {
		if module.Route == route {
			return module, true
		}
	}
	return nil, false
}

// All returns every module sorted by route, then file path.
func (r *Registry) All() []*Module {
	r.mutex.RLock()
	result := make([]*Module, 0, len(r.modules))
	for _, module := range r.modules {
		result = append(result, module)
	}
	r.mutex.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].Route != result[j].Route {
			return result[i].Route < result[j].Route
		}
		return result[i].FilePath < result[j].FilePath
	})
	return result
}

// Remove removes a module and reports whether it was registered.
func (r *Registry) Remove(path string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	module, exists := r.modules[path]
	if !exists {
		return false
	}

	delete(r.modules, path)
	r.notify(Event{Type: EventRemoved, Module: module, Timestamp: time.Now()})
	return true
}

// Watch returns a channel that receives module events. Events are dropped
// for a watcher whose buffer is full.
func (r *Registry) Watch() <-chan Event {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan Event, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *Registry) UnWatch(ch <-chan Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			return
		}
	}
}

// Count returns the number of registered modules
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.modules)
}

// notify must be called with the lock held.
func (r *Registry) notify(event Event) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
		}
	}
}
