package canister

import "fmt"

// Resolve returns the shared instance for id with type safety.
func Resolve[T any](c Container, id string) (T, error) {
	var zero T

	instance, err := c.Instance(id)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, ErrTypeMismatch(id, instance)
	}

	return typed, nil
}

// Must resolves the shared instance or panics - use only during startup.
func Must[T any](c Container, id string) T {
	instance, err := Resolve[T](c, id)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", id, err))
	}

	return instance
}

// Build returns a fresh instance for id with type safety.
func Build[T any](c Container, id string) (T, error) {
	var zero T

	instance, err := c.NewInstance(id)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, ErrTypeMismatch(id, instance)
	}

	return typed, nil
}

// Wire autowires typeName with type safety.
func Wire[T any](c Container, typeName string, args Args) (T, error) {
	var zero T

	instance, err := c.Autowire(typeName, args)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, ErrTypeMismatch(typeName, instance)
	}

	return typed, nil
}

// AddValue registers a pre-built instance under id. Every resolution
// returns the same value.
func AddValue[T any](c Container, id string, instance T, opts ...RegisterOption) error {
	return c.AddInterface(id, func(Container) (any, error) {
		return instance, nil
	}, opts...)
}

// AddTyped registers a typed factory under id.
func AddTyped[T any](c Container, id string, factory func(Container) (T, error), opts ...RegisterOption) error {
	return c.AddInterface(id, func(c Container) (any, error) {
		return factory(c)
	}, opts...)
}
