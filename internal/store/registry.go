package store

import (
	"fmt"
	"sync"
)

type resetter interface {
	Reset()
}

// Registry holds one slice per resource name for a single operator session.
type Registry struct {
	mu     sync.Mutex
	slices map[string]resetter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{slices: make(map[string]resetter)}
}

// For returns the slice registered under name, creating it with key on first
// use. Requesting an existing name with a different record type panics.
func For[T any](r *Registry, name string, key KeyFunc[T]) *Slice[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.slices[name]; ok {
		s, ok := existing.(*Slice[T])
		if !ok {
			panic(fmt.Sprintf("store.For: slice %q holds %T", name, existing))
		}
		return s
	}
	s := New(key)
	r.slices[name] = s
	return s
}

// Reset restores every registered slice to its empty defaults.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.slices {
		s.Reset()
	}
}

// Len returns the number of registered slices.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slices)
}
