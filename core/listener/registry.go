package listener

import (
	"context"
	"sync"

	"github.com/emitkit/emitkit/core/event"
)

// Func is the uniform listener signature. Synchronous and long-running
// listeners share it: every listener is scheduled on the task manager, so
// blocking inside Func never blocks the emitter.
type Func func(ctx context.Context, env event.Envelope) error

// Registry holds event key to ordered-listener mappings. Registration order
// is preserved per key and respected during fan-out. Duplicates are kept:
// registering the same function twice yields two invocations per emission.
type Registry struct {
	mu        sync.RWMutex
	listeners map[string][]Func
}

// NewRegistry creates an empty listener registry.
func NewRegistry() *Registry {
	return &Registry{
		listeners: make(map[string][]Func),
	}
}

// Register appends fn to the ordered listener list for key.
// A nil listener is rejected immediately rather than at invocation time.
func (r *Registry) Register(key string, fn Func) error {
	if fn == nil {
		return ErrNilListener
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.listeners[key] = append(r.listeners[key], fn)
	return nil
}

// Lookup returns a snapshot of the current listeners for key, in
// registration order. The returned slice is a copy: concurrent registration
// never affects an iteration already in flight.
func (r *Registry) Lookup(key string) []Func {
	r.mu.RLock()
	defer r.mu.RUnlock()

	current := r.listeners[key]
	if len(current) == 0 {
		return nil
	}

	snapshot := make([]Func, len(current))
	copy(snapshot, current)
	return snapshot
}

// Clear removes all registered listeners. Used for test isolation and
// explicit resets.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listeners = make(map[string][]Func)
}

// Len returns the total number of registered listeners across all keys.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, fns := range r.listeners {
		total += len(fns)
	}
	return total
}
