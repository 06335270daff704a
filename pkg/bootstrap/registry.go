// Package bootstrap starts the gallery pipeline once its external capabilities
// are ready and the page actually has a gallery container.
package bootstrap

import (
	"context"
	"fmt"
	"sync"
)

// Registry tracks the readiness of named capabilities. Each capability
// resolves at most once, either provided or failed.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	done chan struct{}
	err  error
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

func (r *Registry) get(name string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		e = &entry{done: make(chan struct{})}
		r.entries[name] = e
	}
	return e
}

func (r *Registry) resolve(name string, err error) {
	e := r.get(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-e.done:
		return
	default:
	}
	e.err = err
	close(e.done)
}

// Provide marks name as available
func (r *Registry) Provide(name string) {
	r.resolve(name, nil)
}

// Fail marks name as unavailable
func (r *Registry) Fail(name string, err error) {
	if err == nil {
		err = fmt.Errorf("capability %s unavailable", name)
	}
	r.resolve(name, err)
}

// Ready returns a channel closed once name resolves
func (r *Registry) Ready(name string) <-chan struct{} {
	return r.get(name).done
}

// Await blocks until every name resolves or ctx ends. It returns the first
// capability failure, or the context error.
func (r *Registry) Await(ctx context.Context, names ...string) error {
	for _, name := range names {
		e := r.get(name)
		select {
		case <-e.done:
			if e.err != nil {
				return fmt.Errorf("capability %s: %w", name, e.err)
			}
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", name, ctx.Err())
		}
	}
	return nil
}
