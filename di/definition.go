package di

import (
	"context"
	"reflect"
	"slices"
	"strings"

	"github.com/kbukum/iockit/errors"
)

// Factory builds a component. deps holds the resolved dependencies in the
// order they were declared.
type Factory func(ctx context.Context, deps []any) (any, error)

// Definition describes how to build one named component. It is immutable
// once created.
type Definition struct {
	name         string
	dependencies []string
	factory      Factory
	roles        []string
	primary      bool
	typ          reflect.Type
}

// NewDefinition validates and creates a Definition.
func NewDefinition(name string, dependencies []string, factory Factory, opts ...RegisterOption) (*Definition, error) {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}
	return newDefinition(name, dependencies, factory, o)
}

func newDefinition(name string, dependencies []string, factory Factory, o registerOptions) (*Definition, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.InvalidDefinition(name, "name is required")
	}
	if factory == nil {
		return nil, errors.InvalidDefinition(name, "factory is nil")
	}
	for _, dep := range dependencies {
		if strings.TrimSpace(dep) == "" {
			return nil, errors.InvalidDefinition(name, "dependency names must not be empty")
		}
	}
	for _, role := range o.roles {
		if strings.TrimSpace(role) == "" {
			return nil, errors.InvalidDefinition(name, "role names must not be empty")
		}
	}
	return &Definition{
		name:         name,
		dependencies: slices.Clone(dependencies),
		factory:      factory,
		roles:        dedupe(o.roles),
		primary:      o.primary,
		typ:          o.typ,
	}, nil
}

// Name returns the definition name.
func (d *Definition) Name() string { return d.name }

// Dependencies returns a copy of the dependency names in declaration order.
func (d *Definition) Dependencies() []string { return slices.Clone(d.dependencies) }

// Roles returns a copy of the roles the definition is registered under.
func (d *Definition) Roles() []string { return slices.Clone(d.roles) }

// HasRole reports whether the definition carries role.
func (d *Definition) HasRole(role string) bool { return slices.Contains(d.roles, role) }

// Primary reports whether the definition wins role and type lookups that
// match several definitions.
func (d *Definition) Primary() bool { return d.primary }

// Type returns the declared component type, or nil when none was declared.
func (d *Definition) Type() reflect.Type { return d.typ }

// checkType verifies that v matches the declared type, if any.
func (d *Definition) checkType(v any) error {
	if d.typ == nil || v == nil {
		return nil
	}
	if actual := reflect.TypeOf(v); !actual.AssignableTo(d.typ) {
		return errors.TypeMismatch(d.name, d.typ.String(), actual.String())
	}
	return nil
}

func dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !slices.Contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}

// RegisterOption configures a single registration.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	roles   []string
	primary bool
	replace bool
	typ     reflect.Type
}

// WithRoles registers the definition under additional role names, used by
// GetByRole and GetAllByRole.
func WithRoles(roles ...string) RegisterOption {
	return func(o *registerOptions) { o.roles = append(o.roles, roles...) }
}

// AsPrimary marks the definition as the one to pick when a role or type
// lookup matches several definitions.
func AsPrimary() RegisterOption {
	return func(o *registerOptions) { o.primary = true }
}

// Replace allows the registration to overwrite an existing definition with
// the same name, provided it has not been instantiated yet.
func Replace() RegisterOption {
	return func(o *registerOptions) { o.replace = true }
}

// WithType declares the component type the factory produces. Built values
// that are not assignable to it fail with a TYPE_MISMATCH error.
func WithType(t reflect.Type) RegisterOption {
	return func(o *registerOptions) { o.typ = t }
}
