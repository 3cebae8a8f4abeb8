package di

import (
	"slices"
	"sync"

	"github.com/kbukum/iockit/errors"
)

// Registry stores definitions by name and remembers registration order.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]*Definition
	order []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds def. An existing definition with the same name is replaced
// only when overwrite is set, and keeps its original position. It reports
// whether a definition was replaced.
func (r *Registry) Register(def *Definition, overwrite bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.name]; exists {
		if !overwrite {
			return false, errors.DuplicateDefinition(def.name)
		}
		r.defs[def.name] = def
		return true, nil
	}
	r.defs[def.name] = def
	r.order = append(r.order, def.name)
	return false, nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Names returns all definition names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Definitions returns all definitions in registration order.
func (r *Registry) Definitions() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, len(r.order))
	for i, name := range r.order {
		out[i] = r.defs[name]
	}
	return out
}

// WithRole returns the definitions carrying role, in registration order.
func (r *Registry) WithRole(role string) []*Definition {
	return r.filter(func(d *Definition) bool { return d.HasRole(role) })
}

func (r *Registry) filter(match func(*Definition) bool) []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Definition
	for _, name := range r.order {
		if def := r.defs[name]; match(def) {
			out = append(out, def)
		}
	}
	return out
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}
