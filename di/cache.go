package di

import (
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kbukum/iockit/errors"
)

// Cache holds built singletons. GetOrBuild runs the build function at most
// once per name, however many goroutines ask for it concurrently. Failed
// builds are never stored, so a later call builds again. Once cleared, the
// cache stays empty and builds fail with CONTAINER_CLOSED.
type Cache struct {
	mu        sync.RWMutex
	instances map[string]any
	order     []string
	closed    bool
	group     singleflight.Group
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{instances: make(map[string]any)}
}

// Get returns the instance stored under name.
func (c *Cache) Get(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.instances[name]
	return v, ok
}

// Has reports whether an instance is stored under name.
func (c *Cache) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Put stores v under name unless an instance is already present or the
// cache was cleared. It reports whether v was stored.
func (c *Cache) Put(name string, v any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	if _, exists := c.instances[name]; exists {
		return false
	}
	c.instances[name] = v
	c.order = append(c.order, name)
	return true
}

// GetOrBuild returns the instance stored under name, calling build to
// create and store it if absent. Concurrent callers for the same name share
// one build call. built is true only for the caller whose build produced
// the instance.
func (c *Cache) GetOrBuild(name string, build func() (any, error)) (v any, built bool, err error) {
	if v, ok := c.Get(name); ok {
		return v, false, nil
	}

	v, err, _ = c.group.Do(name, func() (any, error) {
		// Another flight may have finished between Get and Do.
		if v, ok := c.Get(name); ok {
			return v, nil
		}
		if c.Closed() {
			return nil, errors.ContainerClosed()
		}
		v, err := build()
		if err != nil {
			return nil, err
		}
		if !c.Put(name, v) {
			existing, ok := c.Get(name)
			if !ok {
				// Cleared while the build ran.
				return nil, errors.ContainerClosed()
			}
			return existing, nil
		}
		built = true
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, built, nil
}

// Names returns the cached names in the order they were stored.
func (c *Cache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// Len returns the number of cached instances.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.instances)
}

// Closed reports whether Clear has been called.
func (c *Cache) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Clear drops every instance and refuses new ones, including those of
// builds still running. Only container teardown calls it.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances = make(map[string]any)
	c.order = nil
	c.closed = true
}
