package di

import (
	"context"
	"slices"

	"github.com/kbukum/iockit/errors"
)

// Validate checks the whole dependency graph without building anything.
// It returns the first unknown dependency or cycle found, visiting
// definitions in registration order.
func (c *Container) Validate() error {
	if c.closed.Load() {
		return errors.ContainerClosed()
	}
	for _, name := range c.registry.Names() {
		if _, err := c.resolver.Plan(context.Background(), name); err != nil {
			return err
		}
	}
	return nil
}

// Levels groups definition names by dependency depth using Kahn's
// algorithm. Level 0 holds definitions without dependencies; every other
// definition sits one level above its deepest dependency. Names within a
// level keep registration order.
func (c *Container) Levels() ([][]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	defs := c.registry.Definitions()
	position := make(map[string]int, len(defs))
	inDegree := make(map[string]int, len(defs))
	dependents := make(map[string][]string, len(defs))

	for i, def := range defs {
		position[def.name] = i
		// Repeated dependencies count once.
		deps := dedupe(def.dependencies)
		inDegree[def.name] = len(deps)
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], def.name)
		}
	}

	var queue []string
	for _, def := range defs {
		if inDegree[def.name] == 0 {
			queue = append(queue, def.name)
		}
	}

	var levels [][]string
	visited := 0
	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)

		var next []string
		for _, name := range queue {
			for _, dependent := range dependents[name] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		slices.SortFunc(next, func(a, b string) int { return position[a] - position[b] })
		queue = next
	}

	// Only reachable when a replacement between Validate and the snapshot
	// introduced a cycle or an unknown name.
	if visited != len(defs) {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return nil, errors.New(errors.ErrCodeCyclicDependency, "dependency graph changed while computing levels")
	}
	return levels, nil
}
