// Package canister is an identifier-keyed inversion-of-control container.
//
// Interfaces are registered under string identifiers with factory functions.
// Instances are created lazily: Instance caches one shared object per
// identifier for the lifetime of the container, NewInstance builds a fresh
// object on every call. Autowire constructs an arbitrary registered type by
// resolving each of its constructor parameters from a caller-supplied
// argument map, an optional ArgumentMapper holding per-type defaults, the
// container's own registry, or recursive construction.
//
// The container assumes a single composition root: all registration happens
// on one goroutine before resolution begins. Internal maps are guarded by a
// read-write lock so concurrent resolution after setup is safe, but
// registration concurrent with resolution is a caller error.
package canister

// Args maps constructor-parameter names to values. It is the argument-map
// shape consumed by Autowire and produced by the ArgumentMapper.
type Args map[string]any

// Factory creates an instance for a registered interface.
type Factory func(c Container) (any, error)

// Container is the IoC container.
type Container interface {
	// AddInterface registers factory under id. Registering an existing id
	// fails unless WithOverwrite is given.
	AddInterface(id string, factory Factory, opts ...RegisterOption) error

	// AddAutoInterface registers id with a factory that autowires typeName
	// with args on first resolution.
	AddAutoInterface(id string, typeName string, args Args, opts ...RegisterOption) error

	// HasInterface reports whether id is registered.
	HasInterface(id string) bool

	// InstanceList returns all registered identifiers in registration order.
	InstanceList() []string

	// NewInstance invokes the registered factory and returns a fresh
	// instance. The result is never cached.
	NewInstance(id string) (any, error)

	// Instance returns the shared instance for id, invoking the factory on
	// the first call and caching the result. Overwriting a registration
	// after its instance has been cached does not evict the cached entry;
	// cache invalidation is deliberately out of scope.
	Instance(id string) (any, error)

	// Autowire constructs typeName by resolving its constructor parameters
	// from args, the ArgumentMapper's defaults, registered interfaces, and
	// recursive construction. The result is never cached.
	Autowire(typeName string, args Args) (any, error)

	// Use appends middleware invoked around resolution and autowiring.
	Use(m Middleware)

	// Inspect returns diagnostic information about a registration.
	Inspect(id string) InterfaceInfo

	// Validate dry-runs every auto-registered interface and reports
	// unresolvable constructor parameters and dependency cycles without
	// constructing anything.
	Validate() error
}

// InterfaceInfo contains diagnostic information about a registration.
type InterfaceInfo struct {
	ID         string
	Registered bool
	Auto       bool   // Registered via AddAutoInterface
	Target     string // Autowired type name, empty for plain factories
	Cached     bool   // Shared instance already produced
	Type       string // Concrete type of the cached instance
}

// New creates a container. Without options it is non-strict, uses a fresh
// TypeRegistry, carries no ArgumentMapper, and logs nowhere.
func New(opts ...Option) Container {
	return newContainer(opts)
}
