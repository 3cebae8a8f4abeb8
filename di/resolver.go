package di

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/iockit/errors"
	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/observability"
)

// Resolver turns a requested name into an instance. Each call plans the
// definitions that still need building, in post-order, before any factory
// runs; unknown names and cycles therefore fail without side effects.
type Resolver struct {
	registry    *Registry
	cache       *Cache
	log         *logger.Logger
	tracer      trace.Tracer
	metrics     *observability.ContainerMetrics
	containerID string
	waits       *waitGraph
}

// NewResolver creates a Resolver over registry and cache. Logging, tracing
// and metrics are disabled until configured through the container.
func NewResolver(registry *Registry, cache *Cache) *Resolver {
	return &Resolver{
		registry: registry,
		cache:    cache,
		log:      logger.NewNop(),
		tracer:   observability.Tracer(observability.InstrumentationName),
		waits:    newWaitGraph(),
	}
}

// resolution is the per-call state: the chain of names being planned, the
// finished plan and the instances gathered so far.
type resolution struct {
	inProgress map[string]bool
	path       []string
	planned    map[string]bool
	plan       []*Definition
	memo       map[string]any
}

func newResolution(chain []string) *resolution {
	res := &resolution{
		inProgress: make(map[string]bool, len(chain)),
		path:       slices.Clone(chain),
		planned:    make(map[string]bool),
		memo:       make(map[string]any),
	}
	for _, name := range chain {
		res.inProgress[name] = true
	}
	return res
}

// Resolve returns the instance for name, building it and any missing
// dependencies first. A factory that looks names up through the container
// must pass its ctx along: it carries the names being built, so a cycle
// through such lookups fails with CYCLIC_DEPENDENCY. Lookups that would wait
// on a build running on another goroutine are checked against the builds
// waiting on each other, so concurrent callers closing a loop fail the same
// way instead of blocking forever.
func (r *Resolver) Resolve(ctx context.Context, name string) (any, error) {
	res := newResolution(buildChainFrom(ctx))
	if err := r.planNode(res, name); err != nil {
		return nil, err
	}
	for _, def := range res.plan {
		v, err := r.buildPlanned(ctx, res, def)
		if err != nil {
			return nil, err
		}
		res.memo[def.name] = v
	}
	return res.memo[name], nil
}

// Plan returns the names that resolving name would build, in build order.
// Instantiated definitions are left out.
func (r *Resolver) Plan(ctx context.Context, name string) ([]string, error) {
	res := newResolution(buildChainFrom(ctx))
	if err := r.planNode(res, name); err != nil {
		return nil, err
	}
	names := make([]string, len(res.plan))
	for i, def := range res.plan {
		names[i] = def.name
	}
	return names, nil
}

func (r *Resolver) planNode(res *resolution, name string) error {
	if _, ok := res.memo[name]; ok || res.planned[name] {
		return nil
	}
	if res.inProgress[name] {
		start := slices.Index(res.path, name)
		return errors.CyclicDependency(append(slices.Clone(res.path[start:]), name))
	}
	if v, ok := r.cache.Get(name); ok {
		res.memo[name] = v
		return nil
	}

	def, ok := r.registry.Lookup(name)
	if !ok {
		requiredBy := ""
		if len(res.path) > 0 {
			requiredBy = res.path[len(res.path)-1]
		}
		return errors.UnknownDependency(name, requiredBy)
	}

	res.inProgress[name] = true
	res.path = append(res.path, name)
	defer func() {
		delete(res.inProgress, name)
		res.path = res.path[:len(res.path)-1]
	}()

	for _, dep := range def.dependencies {
		if err := r.planNode(res, dep); err != nil {
			return err
		}
	}

	res.planned[name] = true
	res.plan = append(res.plan, def)
	return nil
}

func (r *Resolver) buildPlanned(ctx context.Context, res *resolution, def *Definition) (any, error) {
	args := make([]any, len(def.dependencies))
	for i, dep := range def.dependencies {
		args[i] = res.memo[dep]
	}
	if chain := buildChainFrom(ctx); len(chain) > 0 {
		waiter := chain[len(chain)-1]
		if err := r.waits.add(waiter, def.name); err != nil {
			return nil, err
		}
		defer r.waits.remove(waiter, def.name)
	}
	v, _, err := r.cache.GetOrBuild(def.name, func() (any, error) {
		return r.build(ctx, def, args)
	})
	return v, err
}

// build runs one factory with tracing, metrics and logging around it.
func (r *Resolver) build(ctx context.Context, def *Definition, args []any) (any, error) {
	ctx, span := r.tracer.Start(ctx, observability.SpanContainerBuild, trace.WithAttributes(
		attribute.String(observability.AttrDefinition, def.name),
		attribute.String(observability.AttrContainerID, r.containerID),
		attribute.StringSlice(observability.AttrDependencies, def.dependencies),
	))
	defer span.End()

	log := r.log.WithContext(ctx)
	log.Debug("building definition", logger.DefinitionFields(def.name, def.dependencies))

	start := time.Now()
	v, err := invoke(withBuildChain(ctx, def.name), def, args)
	elapsed := time.Since(start)
	if err == nil {
		err = def.checkType(v)
	}
	r.metrics.RecordBuild(ctx, def.name, err, elapsed)

	if err != nil {
		observability.RecordSpanError(span, err)
		log.Warn("definition build failed", logger.MergeWithDuration(
			logger.MergeWithError(logger.Fields(logger.FieldDefinition, def.name), err), elapsed))
		return nil, err
	}

	log.Info("definition built", logger.MergeWithDuration(
		logger.Fields(logger.FieldDefinition, def.name), elapsed))
	return v, nil
}

// invoke calls the factory, converting errors and panics into FACTORY_FAILED
// errors naming the definition. Errors that already carry a container code,
// such as a cycle found through a nested lookup, are passed through.
func invoke(ctx context.Context, def *Definition, args []any) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			v = nil
			err = errors.FactoryFailed(def.name, fmt.Errorf("panic: %v", p))
		}
	}()

	v, err = def.factory(ctx, args)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeCyclicDependency) {
			return nil, err
		}
		return nil, errors.FactoryFailed(def.name, err)
	}
	return v, nil
}

type buildChainKey struct{}

// withBuildChain records that the factory for name runs under ctx.
func withBuildChain(ctx context.Context, name string) context.Context {
	chain := buildChainFrom(ctx)
	next := make([]string, len(chain), len(chain)+1)
	copy(next, chain)
	return context.WithValue(ctx, buildChainKey{}, append(next, name))
}

func buildChainFrom(ctx context.Context) []string {
	chain, _ := ctx.Value(buildChainKey{}).([]string)
	return chain
}
