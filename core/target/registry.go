package target

import "sync"

// Registry holds the configured remote targets in registration order.
// Duplicates are permitted and not merged: each registration produces an
// independent dispatch on every matching emission.
type Registry struct {
	mu      sync.RWMutex
	targets []Target
}

// NewRegistry creates an empty target registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register parses raw (see Parse) and appends the result. Parse errors
// surface here, synchronously, so a malformed description never reaches
// dispatch time.
func (r *Registry) Register(raw any) error {
	t, err := Parse(raw)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.targets = append(r.targets, t)
	return nil
}

// Matching returns every registered target whose event filter admits key,
// preserving registration order. The result is a snapshot of independent
// copies: concurrent registration never affects an iteration already in
// flight, and mutating a returned target never alters the registered one.
func (r *Registry) Matching(key string) []Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Target
	for _, t := range r.targets {
		if t.Wants(key) {
			matched = append(matched, t.clone())
		}
	}
	return matched
}

// Clear removes all registered targets.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.targets = nil
}

// Len returns the number of registered targets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.targets)
}
