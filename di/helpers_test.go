package di

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

// component is a distinct pointer per build, so identity checks are exact.
type component struct {
	name string
	deps []any
}

// recorder counts factory calls and remembers the order they ran in.
type recorder struct {
	mu    sync.Mutex
	order []string
	calls map[string]*atomic.Int32
}

func newRecorder() *recorder {
	return &recorder{calls: make(map[string]*atomic.Int32)}
}

func (r *recorder) factory(name string) Factory {
	r.mu.Lock()
	counter, ok := r.calls[name]
	if !ok {
		counter = new(atomic.Int32)
		r.calls[name] = counter
	}
	r.mu.Unlock()

	return func(_ context.Context, deps []any) (any, error) {
		counter.Add(1)
		r.mu.Lock()
		r.order = append(r.order, name)
		r.mu.Unlock()
		return &component{name: name, deps: deps}, nil
	}
}

func (r *recorder) count(name string) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.calls[name]; ok {
		return c.Load()
	}
	return 0
}

func (r *recorder) built() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func mustRegister(t testing.TB, c *Container, name string, deps []string, f Factory, opts ...RegisterOption) {
	t.Helper()
	if err := c.Register(name, deps, f, opts...); err != nil {
		t.Fatalf("Register(%s) failed: %v", name, err)
	}
}
