package di

import (
	"slices"
	"sync"

	"github.com/kbukum/iockit/errors"
)

// waitGraph records which running build waits on which other build. A
// factory that looks a name up is blocked until that name's build finishes,
// possibly on another goroutine. An edge that would close a loop is a
// deadlock and is refused as a cycle.
type waitGraph struct {
	mu    sync.Mutex
	edges map[string][]string
}

func newWaitGraph() *waitGraph {
	return &waitGraph{edges: make(map[string][]string)}
}

// add records that the build of waiter waits on the build of target. It
// fails with CYCLIC_DEPENDENCY, leaving the graph unchanged, when target
// already waits on waiter, directly or through other builds.
func (g *waitGraph) add(waiter, target string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if path := g.pathLocked(target, waiter, map[string]bool{}); path != nil {
		return errors.CyclicDependency(append([]string{waiter}, path...))
	}
	g.edges[waiter] = append(g.edges[waiter], target)
	return nil
}

// remove drops one waiter → target edge added by add.
func (g *waitGraph) remove(waiter, target string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	targets := g.edges[waiter]
	if i := slices.Index(targets, target); i >= 0 {
		targets = slices.Delete(targets, i, i+1)
	}
	if len(targets) == 0 {
		delete(g.edges, waiter)
		return
	}
	g.edges[waiter] = targets
}

// pathLocked returns the names from from to to along wait edges, both
// included, or nil when to is unreachable.
func (g *waitGraph) pathLocked(from, to string, seen map[string]bool) []string {
	if from == to {
		return []string{to}
	}
	if seen[from] {
		return nil
	}
	seen[from] = true
	for _, next := range g.edges[from] {
		if rest := g.pathLocked(next, to, seen); rest != nil {
			return append([]string{from}, rest...)
		}
	}
	return nil
}
