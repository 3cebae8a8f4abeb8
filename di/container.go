package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/iockit/errors"
	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/observability"
)

// Container is the facade over the registry, resolver and singleton cache.
// It is safe for concurrent use; registration may run alongside lookups.
type Container struct {
	id             string
	registry       *Registry
	cache          *Cache
	resolver       *Resolver
	log            *logger.Logger
	tracer         trace.Tracer
	metrics        *observability.ContainerMetrics
	allowOverwrite bool

	// regMu serializes registrations so the instantiated check and the
	// replacement happen together.
	regMu  sync.Mutex
	closed atomic.Bool
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger. The container tags it with the "di"
// component and its id.
func WithLogger(l *logger.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTracer sets the tracer used for lookup and build spans. The default
// is the iockit tracer from the global OpenTelemetry provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Container) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithMetrics records build, cache hit and error metrics.
func WithMetrics(m *observability.ContainerMetrics) Option {
	return func(c *Container) { c.metrics = m }
}

// WithID sets the container id reported in logs and spans. A random UUID
// is used otherwise.
func WithID(id string) Option {
	return func(c *Container) {
		if id != "" {
			c.id = id
		}
	}
}

// AllowOverwrite lets any registration replace an existing, not yet
// instantiated definition with the same name, as if Replace were passed.
func AllowOverwrite(allow bool) Option {
	return func(c *Container) { c.allowOverwrite = allow }
}

// New creates an empty Container.
func New(opts ...Option) *Container {
	c := &Container{
		id:       uuid.NewString(),
		registry: NewRegistry(),
		cache:    NewCache(),
		log:      logger.NewNop(),
		tracer:   observability.Tracer(observability.InstrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("di").WithFields(logger.Fields(logger.FieldContainerID, c.id))

	c.resolver = NewResolver(c.registry, c.cache)
	c.resolver.log = c.log
	c.resolver.tracer = c.tracer
	c.resolver.metrics = c.metrics
	c.resolver.containerID = c.id
	return c
}

// ID returns the container id.
func (c *Container) ID() string { return c.id }

// Register adds a definition. deps are the names whose instances factory
// receives, in the same order.
func (c *Container) Register(name string, deps []string, factory Factory, opts ...RegisterOption) error {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}
	def, err := newDefinition(name, deps, factory, o)
	if err != nil {
		return err
	}
	return c.add(def, o.replace)
}

// RegisterInstance registers an already built value. It is cached
// immediately, so it can never be replaced.
func (c *Container) RegisterInstance(name string, value any, opts ...RegisterOption) error {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}
	factory := func(context.Context, []any) (any, error) { return value, nil }
	def, err := newDefinition(name, nil, factory, o)
	if err != nil {
		return err
	}
	if err := def.checkType(value); err != nil {
		return err
	}

	c.regMu.Lock()
	defer c.regMu.Unlock()
	if err := c.addLocked(def, o.replace); err != nil {
		return err
	}
	c.cache.Put(name, value)
	return nil
}

func (c *Container) add(def *Definition, replace bool) error {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	return c.addLocked(def, replace)
}

func (c *Container) addLocked(def *Definition, replace bool) error {
	if c.closed.Load() {
		return errors.ContainerClosed()
	}
	overwrite := replace || c.allowOverwrite
	if overwrite && c.cache.Has(def.name) {
		return errors.DuplicateDefinition(def.name).
			WithDetail("reason", "an instantiated definition cannot be replaced")
	}

	replaced, err := c.registry.Register(def, overwrite)
	if err != nil {
		return err
	}

	fields := logger.DefinitionFields(def.name, def.dependencies)
	if len(def.roles) > 0 {
		fields[logger.FieldRole] = def.roles
	}
	if replaced {
		c.log.Info("definition replaced", fields)
	} else {
		c.log.Debug("definition registered", fields)
	}
	return nil
}

// Get returns the singleton for name, building it and its dependencies on
// first use.
func (c *Container) Get(ctx context.Context, name string) (any, error) {
	ctx, span := c.tracer.Start(ctx, observability.SpanContainerGet, trace.WithAttributes(
		attribute.String(observability.AttrDefinition, name),
		attribute.String(observability.AttrContainerID, c.id),
	))
	defer span.End()

	v, err := c.get(ctx, span, name)
	if err != nil {
		observability.RecordSpanError(span, err)
		c.metrics.RecordResolutionError(ctx, err)
		c.log.WithContext(ctx).Debug("lookup failed", logger.MergeWithError(
			logger.Fields(logger.FieldDefinition, name, "code", string(errors.CodeOf(err))), err))
		return nil, err
	}
	return v, nil
}

func (c *Container) get(ctx context.Context, span trace.Span, name string) (any, error) {
	if c.closed.Load() {
		return nil, errors.ContainerClosed()
	}
	if v, ok := c.cache.Get(name); ok {
		span.SetAttributes(attribute.Bool(observability.AttrCacheHit, true))
		c.metrics.RecordCacheHit(ctx, name)
		return v, nil
	}
	span.SetAttributes(attribute.Bool(observability.AttrCacheHit, false))
	return c.resolver.Resolve(ctx, name)
}

// MustGet is like Get but panics on error.
func (c *Container) MustGet(ctx context.Context, name string) any {
	v, err := c.Get(ctx, name)
	if err != nil {
		panic(fmt.Sprintf("di: failed to get %s: %v", name, err))
	}
	return v
}

// GetByRole returns the single definition carrying role. When several
// carry it, the one marked primary wins; without exactly one primary the
// lookup is ambiguous.
func (c *Container) GetByRole(ctx context.Context, role string) (any, error) {
	def, err := c.selectOne("role", role, c.registry.WithRole(role))
	if err != nil {
		c.metrics.RecordResolutionError(ctx, err)
		return nil, err
	}
	return c.Get(ctx, def.name)
}

// GetAllByRole returns every instance carrying role, in registration order.
func (c *Container) GetAllByRole(ctx context.Context, role string) ([]any, error) {
	defs := c.registry.WithRole(role)
	out := make([]any, 0, len(defs))
	for _, def := range defs {
		v, err := c.Get(ctx, def.name)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// getByType resolves the single definition whose declared type is
// assignable to t, applying the same primary rule as GetByRole.
func (c *Container) getByType(ctx context.Context, t reflect.Type) (any, error) {
	candidates := c.registry.filter(func(d *Definition) bool {
		return d.typ != nil && d.typ.AssignableTo(t)
	})
	def, err := c.selectOne("type", t.String(), candidates)
	if err != nil {
		c.metrics.RecordResolutionError(ctx, err)
		return nil, err
	}
	return c.Get(ctx, def.name)
}

func (c *Container) selectOne(kind, key string, candidates []*Definition) (*Definition, error) {
	if c.closed.Load() {
		return nil, errors.ContainerClosed()
	}
	switch len(candidates) {
	case 0:
		return nil, errors.UnknownDependency(kind+":"+key, "").WithDetail(kind, key)
	case 1:
		return candidates[0], nil
	}

	var primary []*Definition
	names := make([]string, len(candidates))
	for i, def := range candidates {
		names[i] = def.name
		if def.primary {
			primary = append(primary, def)
		}
	}
	if len(primary) == 1 {
		return primary[0], nil
	}
	return nil, errors.AmbiguousBinding(kind, key, names)
}

// Has reports whether a definition is registered under name.
func (c *Container) Has(name string) bool {
	_, ok := c.registry.Lookup(name)
	return ok
}

// Names returns all definition names in registration order.
func (c *Container) Names() []string {
	return c.registry.Names()
}

// DefinitionInfo describes a registered definition for introspection.
type DefinitionInfo struct {
	Name         string
	Dependencies []string
	Roles        []string
	Primary      bool
	Type         string
	Instantiated bool
}

// Definitions returns info about all definitions in registration order.
func (c *Container) Definitions() []DefinitionInfo {
	defs := c.registry.Definitions()
	out := make([]DefinitionInfo, len(defs))
	for i, def := range defs {
		info := DefinitionInfo{
			Name:         def.name,
			Dependencies: def.Dependencies(),
			Roles:        def.Roles(),
			Primary:      def.primary,
			Instantiated: c.cache.Has(def.name),
		}
		if def.typ != nil {
			info.Type = def.typ.String()
		}
		out[i] = info
	}
	return out
}

// Instantiated returns the names of built singletons in build order.
func (c *Container) Instantiated() []string {
	return c.cache.Names()
}

// Preinstantiate builds every definition, in registration order, instead of
// waiting for first use. It stops at the first failure.
func (c *Container) Preinstantiate(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, observability.SpanContainerPrepare, trace.WithAttributes(
		attribute.String(observability.AttrContainerID, c.id),
	))
	defer span.End()

	for _, name := range c.registry.Names() {
		if _, err := c.Get(ctx, name); err != nil {
			observability.RecordSpanError(span, err)
			return err
		}
	}
	c.log.Info("definitions preinstantiated", logger.Fields(logger.FieldCount, c.cache.Len()))
	return nil
}

// Close tears the container down: the cache is cleared and every later
// registration or lookup fails with CONTAINER_CLOSED. Instances are dropped,
// not closed. Calling Close again is a no-op.
func (c *Container) Close() error {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	if c.closed.Swap(true) {
		return nil
	}
	dropped := c.cache.Len()
	c.cache.Clear()
	c.log.Info("container closed", logger.Fields(logger.FieldCount, dropped))
	return nil
}
