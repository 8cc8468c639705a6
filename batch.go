package canister

// InterfaceRegistration holds configuration for one interface to be
// registered in a batch.
type InterfaceRegistration struct {
	ID      string
	Factory Factory
	Options []RegisterOption
}

// Interface creates an InterfaceRegistration for batch registration.
//
// Example:
//
//	canister.AddInterfaces(c,
//	    canister.Interface("db", NewDatabase),
//	    canister.Interface("cache", NewCache),
//	)
func Interface(id string, factory Factory, opts ...RegisterOption) InterfaceRegistration {
	return InterfaceRegistration{
		ID:      id,
		Factory: factory,
		Options: opts,
	}
}

// AddInterfaces registers multiple interfaces in a single call.
// Returns the first registration error; earlier registrations stand.
func AddInterfaces(c Container, registrations ...InterfaceRegistration) error {
	for _, reg := range registrations {
		if err := c.AddInterface(reg.ID, reg.Factory, reg.Options...); err != nil {
			return err
		}
	}

	return nil
}

// TypedInterfaceRegistration holds configuration for one typed interface to
// be registered in a batch.
type TypedInterfaceRegistration[T any] struct {
	ID      string
	Factory func(Container) (T, error)
	Options []RegisterOption
}

// TypedInterface creates a TypedInterfaceRegistration for batch registration.
func TypedInterface[T any](id string, factory func(Container) (T, error), opts ...RegisterOption) TypedInterfaceRegistration[T] {
	return TypedInterfaceRegistration[T]{
		ID:      id,
		Factory: factory,
		Options: opts,
	}
}

// AddTypedInterfaces registers multiple typed interfaces in a single call.
//
// Example:
//
//	err := canister.AddTypedInterfaces(c,
//	    canister.TypedInterface("db", NewDatabase),
//	    canister.TypedInterface("replica", NewReplica),
//	)
func AddTypedInterfaces[T any](c Container, registrations ...TypedInterfaceRegistration[T]) error {
	for _, reg := range registrations {
		factory := reg.Factory
		if err := c.AddInterface(reg.ID, func(c Container) (any, error) {
			return factory(c)
		}, reg.Options...); err != nil {
			return err
		}
	}

	return nil
}

// KeyedInterfaceRegistration holds configuration for one keyed interface to
// be registered in a batch.
type KeyedInterfaceRegistration[T any] struct {
	Key     InterfaceKey[T]
	Factory func(Container) (T, error)
	Options []RegisterOption
}

// KeyedInterface creates a KeyedInterfaceRegistration for batch registration
// with interface keys.
func KeyedInterface[T any](key InterfaceKey[T], factory func(Container) (T, error), opts ...RegisterOption) KeyedInterfaceRegistration[T] {
	return KeyedInterfaceRegistration[T]{
		Key:     key,
		Factory: factory,
		Options: opts,
	}
}

// AddKeyedInterfaces registers multiple keyed interfaces in a single call.
//
// Example:
//
//	var (
//	    DatabaseKey = canister.NewInterfaceKey[*Database]("database")
//	    CacheKey    = canister.NewInterfaceKey[*Cache]("cache")
//	)
//
//	err := canister.AddKeyedInterfaces(c,
//	    canister.KeyedInterface(DatabaseKey, NewDatabase),
//	    canister.KeyedInterface(CacheKey, NewCache),
//	)
func AddKeyedInterfaces[T any](c Container, registrations ...KeyedInterfaceRegistration[T]) error {
	for _, reg := range registrations {
		if err := AddWithKey(c, reg.Key, reg.Factory, reg.Options...); err != nil {
			return err
		}
	}

	return nil
}
