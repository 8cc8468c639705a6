package canister

// InterfaceKey provides type-safe interface identification.
// Use NewInterfaceKey to create typed keys for your interfaces.
type InterfaceKey[T any] struct {
	id string
}

// NewInterfaceKey creates a new typed interface key.
// The type parameter T ensures type safety when registering and resolving.
//
// Example:
//
//	var DatabaseKey = NewInterfaceKey[*Database]("database")
//	var MailerKey = NewInterfaceKey[Mailer]("mailer")
func NewInterfaceKey[T any](id string) InterfaceKey[T] {
	return InterfaceKey[T]{id: id}
}

// ID returns the string identifier of the key.
func (k InterfaceKey[T]) ID() string {
	return k.id
}

// AddWithKey registers a typed factory using an interface key.
//
// Example:
//
//	var DatabaseKey = NewInterfaceKey[*Database]("database")
//	AddWithKey(c, DatabaseKey, func(c Container) (*Database, error) {
//	    return &Database{}, nil
//	})
func AddWithKey[T any](c Container, key InterfaceKey[T], factory func(Container) (T, error), opts ...RegisterOption) error {
	return c.AddInterface(key.id, func(c Container) (any, error) {
		return factory(c)
	}, opts...)
}

// InstanceWithKey resolves the shared instance using an interface key.
func InstanceWithKey[T any](c Container, key InterfaceKey[T]) (T, error) {
	return Resolve[T](c, key.id)
}

// MustWithKey resolves using an interface key and panics on error.
func MustWithKey[T any](c Container, key InterfaceKey[T]) T {
	return Must[T](c, key.id)
}

// HasKey checks if an interface is registered using a typed key.
func HasKey[T any](c Container, key InterfaceKey[T]) bool {
	return c.HasInterface(key.id)
}

// InspectKey returns diagnostic information using a typed key.
func InspectKey[T any](c Container, key InterfaceKey[T]) InterfaceInfo {
	return c.Inspect(key.id)
}
