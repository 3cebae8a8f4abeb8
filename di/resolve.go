package di

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kbukum/iockit/errors"
)

// Getter is the lookup side of a Container.
type Getter interface {
	Get(ctx context.Context, name string) (any, error)
}

// Resolve returns the instance for name as a T.
//
// Example:
//
//	svc, err := di.Resolve[*shop.OrderService](ctx, c, shop.Components.OrderService)
//	if err != nil {
//	    return fmt.Errorf("resolving order service: %w", err)
//	}
func Resolve[T any](ctx context.Context, g Getter, name string) (T, error) {
	var zero T
	instance, err := g.Get(ctx, name)
	if err != nil {
		return zero, err
	}
	return cast[T](name, instance)
}

// MustResolve is like Resolve but panics on error. Use it in wiring code
// where a missing component is a programming error.
func MustResolve[T any](ctx context.Context, g Getter, name string) T {
	result, err := Resolve[T](ctx, g, name)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", name, err))
	}
	return result
}

// TryResolve returns the instance for name, or false if it cannot be
// resolved as a T. Use it for optional components.
//
//	if metrics, ok := di.TryResolve[*Metrics](ctx, c, "metrics"); ok {
//	    metrics.Record(...)
//	}
func TryResolve[T any](ctx context.Context, g Getter, name string) (T, bool) {
	result, err := Resolve[T](ctx, g, name)
	if err != nil {
		var zero T
		return zero, false
	}
	return result, true
}

// ResolveRole returns the instance selected by GetByRole as a T.
func ResolveRole[T any](ctx context.Context, c *Container, role string) (T, error) {
	var zero T
	instance, err := c.GetByRole(ctx, role)
	if err != nil {
		return zero, err
	}
	return cast[T]("role:"+role, instance)
}

// ResolveAllRole returns every instance carrying role as a []T.
func ResolveAllRole[T any](ctx context.Context, c *Container, role string) ([]T, error) {
	instances, err := c.GetAllByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(instances))
	for i, instance := range instances {
		if out[i], err = cast[T]("role:"+role, instance); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ResolveByType returns the single instance whose declared type is
// assignable to T. Only definitions registered through Provide or WithType
// declare a type. Several candidates are narrowed by the primary flag.
func ResolveByType[T any](ctx context.Context, c *Container) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()
	instance, err := c.getByType(ctx, t)
	if err != nil {
		return zero, err
	}
	return cast[T]("type:"+t.String(), instance)
}

// Provide registers a typed factory and declares T as the component type.
func Provide[T any](c *Container, name string, deps []string, factory func(ctx context.Context, deps []any) (T, error), opts ...RegisterOption) error {
	if factory == nil {
		return errors.InvalidDefinition(name, "factory is nil")
	}
	wrapped := func(ctx context.Context, deps []any) (any, error) {
		return factory(ctx, deps)
	}
	opts = append(opts[:len(opts):len(opts)], WithType(reflect.TypeFor[T]()))
	return c.Register(name, deps, wrapped, opts...)
}

// Dep returns the i-th dependency as a T. Factories use it to unpack their
// arguments.
//
//	repo, err := di.Dep[shop.MemberRepository](deps, 0)
func Dep[T any](deps []any, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(deps) {
		return zero, errors.New(errors.ErrCodeInvalidDefinition,
			fmt.Sprintf("dependency index %d out of range (%d dependencies)", i, len(deps)))
	}
	result, ok := deps[i].(T)
	if !ok {
		return zero, errors.New(errors.ErrCodeTypeMismatch,
			fmt.Sprintf("dependency %d is %T, expected %s", i, deps[i], reflect.TypeFor[T]())).
			WithDetails(map[string]any{
				errors.DetailExpected: reflect.TypeFor[T]().String(),
				errors.DetailActual:   fmt.Sprintf("%T", deps[i]),
			})
	}
	return result, nil
}

func cast[T any](name string, instance any) (T, error) {
	result, ok := instance.(T)
	if !ok {
		var zero T
		return zero, errors.TypeMismatch(name, reflect.TypeFor[T]().String(), fmt.Sprintf("%T", instance))
	}
	return result, nil
}
