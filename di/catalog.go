package di

import (
	"fmt"
	"slices"
	"sync"

	"github.com/kbukum/iockit/errors"
)

// Catalog maps factory keys to factories so definitions can be declared in
// configuration and bound to code at startup.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]Factory)}
}

// Add registers factory under key.
func (cat *Catalog) Add(key string, factory Factory) error {
	if key == "" {
		return errors.Validation("catalog: factory key is required")
	}
	if factory == nil {
		return errors.Validation(fmt.Sprintf("catalog: factory %q is nil", key))
	}
	cat.mu.Lock()
	defer cat.mu.Unlock()
	if _, exists := cat.factories[key]; exists {
		return errors.Validation(fmt.Sprintf("catalog: factory %q already added", key))
	}
	cat.factories[key] = factory
	return nil
}

// MustAdd is like Add but panics on error.
func (cat *Catalog) MustAdd(key string, factory Factory) *Catalog {
	if err := cat.Add(key, factory); err != nil {
		panic(err)
	}
	return cat
}

// Lookup returns the factory registered under key.
func (cat *Catalog) Lookup(key string) (Factory, bool) {
	cat.mu.RLock()
	defer cat.mu.RUnlock()
	f, ok := cat.factories[key]
	return f, ok
}

// Keys returns the factory keys in sorted order.
func (cat *Catalog) Keys() []string {
	cat.mu.RLock()
	defer cat.mu.RUnlock()
	keys := make([]string, 0, len(cat.factories))
	for k := range cat.factories {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Merge adds every factory of other. It fails on the first key present in
// both catalogs.
func (cat *Catalog) Merge(other *Catalog) error {
	for _, key := range other.Keys() {
		f, _ := other.Lookup(key)
		if err := cat.Add(key, f); err != nil {
			return err
		}
	}
	return nil
}

// Bind registers a definition in c whose factory is looked up by key.
func (cat *Catalog) Bind(c *Container, name, key string, deps []string, opts ...RegisterOption) error {
	factory, ok := cat.Lookup(key)
	if !ok {
		return errors.InvalidDefinition(name, fmt.Sprintf("unknown factory %q", key)).
			WithDetail("factory", key)
	}
	return c.Register(name, deps, factory, opts...)
}
