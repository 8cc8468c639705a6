package canister

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// containerImpl implements Container.
type containerImpl struct {
	interfaces map[string]*interfaceRegistration
	order      []string // Preserve registration order for InstanceList
	instances  map[string]any
	types      Introspector
	mapper     *ArgumentMapper
	middleware *middlewareChain
	strict     bool
	log        *zap.Logger
	mu         sync.RWMutex
}

// interfaceRegistration holds one registry entry.
type interfaceRegistration struct {
	id       string
	factory  Factory
	auto     bool
	target   string // autowired type name, empty for plain factories
	autoArgs Args
	building map[int64]struct{} // goroutines currently running the factory
	mu       sync.Mutex
}

// newContainer creates the container implementation.
func newContainer(opts []Option) *containerImpl {
	c := &containerImpl{
		interfaces: make(map[string]*interfaceRegistration),
		instances:  make(map[string]any),
		middleware: newMiddlewareChain(),
		log:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.types == nil {
		c.types = NewTypeRegistry()
	}

	return c
}

// AddInterface registers factory under id.
func (c *containerImpl) AddInterface(id string, factory Factory, opts ...RegisterOption) error {
	if factory == nil {
		return ErrInvalidFactory
	}

	return c.register("AddInterface", &interfaceRegistration{id: id, factory: factory}, opts)
}

// AddAutoInterface registers id with a factory that autowires typeName with
// args on first resolution. The target type is not inspected until then.
func (c *containerImpl) AddAutoInterface(id string, typeName string, args Args, opts ...RegisterOption) error {
	if strings.TrimSpace(typeName) == "" {
		return ErrInvalidIdentifier("AddAutoInterface")
	}

	factory := func(c Container) (any, error) {
		return c.Autowire(typeName, args)
	}

	return c.register("AddAutoInterface", &interfaceRegistration{
		id:       id,
		factory:  factory,
		auto:     true,
		target:   typeName,
		autoArgs: args,
	}, opts)
}

// register validates the identifier and mutates the registry. The instance
// cache is never touched here: an instance cached before an overwrite stays
// live for the container's lifetime.
func (c *containerImpl) register(op string, reg *interfaceRegistration, opts []RegisterOption) error {
	cfg := applyRegisterOptions(opts)

	if strings.TrimSpace(reg.id) == "" {
		return ErrInvalidIdentifier(op)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, exists := c.interfaces[reg.id]
	if exists && !cfg.overwrite {
		return ErrDuplicateInterface(reg.id)
	}

	if !exists {
		c.order = append(c.order, reg.id)
	}

	c.interfaces[reg.id] = reg

	c.log.Debug("registered interface",
		zap.String("interface", reg.id),
		zap.Bool("auto", reg.auto),
		zap.Bool("overwrite", exists),
	)

	return nil
}

// HasInterface reports whether id is registered.
func (c *containerImpl) HasInterface(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.interfaces[id]

	return ok
}

// InstanceList returns all registered identifiers in registration order.
func (c *containerImpl) InstanceList() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, len(c.order))
	copy(out, c.order)

	return out
}

// NewInstance invokes the registered factory and returns a fresh instance.
func (c *containerImpl) NewInstance(id string) (any, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidIdentifier("NewInstance")
	}

	ctx := context.Background()

	if err := c.middleware.beforeResolve(ctx, id); err != nil {
		return nil, err
	}

	instance, err := c.produce(id)

	if mwErr := c.middleware.afterResolve(ctx, id, instance, err); mwErr != nil {
		return nil, mwErr
	}

	return instance, err
}

// Instance returns the shared instance for id, producing and caching it on
// first call. Cached instances are returned without re-verification.
func (c *containerImpl) Instance(id string) (any, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidIdentifier("Instance")
	}

	ctx := context.Background()

	if err := c.middleware.beforeResolve(ctx, id); err != nil {
		return nil, err
	}

	instance, err := c.resolveShared(id)

	if mwErr := c.middleware.afterResolve(ctx, id, instance, err); mwErr != nil {
		return nil, mwErr
	}

	return instance, err
}

// resolveShared performs the cached resolution without middleware.
func (c *containerImpl) resolveShared(id string) (any, error) {
	c.mu.RLock()
	instance, ok := c.instances[id]
	c.mu.RUnlock()

	if ok {
		return instance, nil
	}

	instance, err := c.produce(id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A nested resolution may have populated the cache while the factory
	// ran; the first cached instance wins.
	if cached, ok := c.instances[id]; ok {
		return cached, nil
	}

	c.instances[id] = instance

	return instance, nil
}

// produce runs the registered factory and applies the strict-mode check.
func (c *containerImpl) produce(id string) (any, error) {
	c.mu.RLock()
	reg, ok := c.interfaces[id]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrNotRegistered(id)
	}

	// The self-resolution guard is scoped to the goroutine running the
	// factory: re-entry from the same goroutine is a cycle, while concurrent
	// first resolutions from other goroutines proceed (resolveShared keeps
	// the first cached instance).
	gid := goroutineID()

	reg.mu.Lock()
	if _, busy := reg.building[gid]; busy {
		reg.mu.Unlock()

		return nil, ErrAutowireCycle([]string{id, id})
	}

	if reg.building == nil {
		reg.building = make(map[int64]struct{})
	}

	reg.building[gid] = struct{}{}
	reg.mu.Unlock()

	// Factory runs without locks held; it may resolve other interfaces.
	instance, err := reg.factory(c)

	reg.mu.Lock()
	delete(reg.building, gid)
	reg.mu.Unlock()

	if err != nil {
		return nil, err
	}

	if c.strict && !c.types.Satisfies(instance, id) {
		return nil, ErrTypeMismatch(id, instance)
	}

	c.log.Debug("produced instance",
		zap.String("interface", id),
		zap.String("type", fmt.Sprintf("%T", instance)),
	)

	return instance, nil
}

// Autowire constructs typeName, resolving constructor parameters per the
// autowiring rules. See autowire.go for the resolution order.
func (c *containerImpl) Autowire(typeName string, args Args) (any, error) {
	ctx := context.Background()

	if err := c.middleware.beforeAutowire(ctx, typeName); err != nil {
		return nil, err
	}

	instance, err := c.autowire(typeName, args, nil)

	if mwErr := c.middleware.afterAutowire(ctx, typeName, instance, err); mwErr != nil {
		return nil, mwErr
	}

	return instance, err
}

// Use appends middleware to the chain.
func (c *containerImpl) Use(m Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware.add(m)
}

// Inspect returns diagnostic information about a registration.
func (c *containerImpl) Inspect(id string) InterfaceInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info := InterfaceInfo{ID: id}

	reg, ok := c.interfaces[id]
	if !ok {
		return info
	}

	info.Registered = true
	info.Auto = reg.auto
	info.Target = reg.target

	if instance, ok := c.instances[id]; ok {
		info.Cached = true
		info.Type = fmt.Sprintf("%T", instance)
	}

	return info
}

// Validate dry-runs every auto-registered interface: it walks the
// constructor parameters of each target (and its transitive constructible
// dependencies) checking that every parameter can be satisfied, records the
// dependency edges, and topologically sorts the resulting graph to surface
// cycles before anything is constructed.
func (c *containerImpl) Validate() error {
	c.mu.RLock()
	targets := make([]*interfaceRegistration, 0, len(c.order))

	for _, id := range c.order {
		if reg := c.interfaces[id]; reg.auto {
			targets = append(targets, reg)
		}
	}
	c.mu.RUnlock()

	graph := NewDependencyGraph()

	var errs error

	for _, reg := range targets {
		errs = multierr.Append(errs, c.validateType(reg.target, reg.autoArgs, graph, nil))
	}

	if errs != nil {
		return errs
	}

	_, err := graph.TopologicalSort()

	return err
}

// validateType checks one constructible type and records its edges. path is
// the chain currently under validation; a type reached on several paths is
// checked on each of them, since the effective arguments differ per path.
func (c *containerImpl) validateType(typeName string, args Args, graph *DependencyGraph, path []string) error {
	for _, seen := range path {
		if seen == typeName {
			// Edge already recorded; the topological sort reports the cycle.
			return nil
		}
	}

	path = append(path, typeName)

	if c.mapper != nil {
		mapped, err := c.mapper.Map(typeName, args)
		if err != nil {
			return err
		}

		args = mapped
	}

	if c.HasInterface(typeName) {
		return nil
	}

	if !c.types.Constructible(typeName) {
		return ErrAutowireTypeNotFound(typeName)
	}

	params, err := c.types.Params(typeName)
	if err != nil {
		return err
	}

	var (
		deps []string
		errs error
	)

	for _, p := range params {
		if p.Variadic {
			errs = multierr.Append(errs, ErrAutowireVariadic(typeName, p.Name))
			continue
		}

		if p.Type == "" {
			errs = multierr.Append(errs, ErrAutowireUntyped(typeName, p.Name))
			continue
		}

		supplied, verbatim := c.suppliedValue(args, p)
		if verbatim {
			continue
		}

		switch {
		case c.HasInterface(p.Type):
			// Satisfied by a registered interface.
		case c.types.Constructible(p.Type):
			deps = append(deps, p.Type)

			sub := Args{}
			if m, ok := asArgs(supplied); ok {
				sub = m
			}

			errs = multierr.Append(errs, c.validateType(p.Type, sub, graph, path))
		default:
			errs = multierr.Append(errs, ErrAutowireUnresolvable(typeName, p.Name, p.Type))
		}
	}

	graph.AddNode(typeName, mergeDeps(graph.Dependencies(typeName), deps))

	return errs
}

// mergeDeps unions two dependency lists, preserving first-seen order, so a
// node validated on several paths keeps the edges from all of them.
func mergeDeps(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing)+len(extra))
	out := make([]string, 0, len(existing)+len(extra))

	for _, deps := range [][]string{existing, extra} {
		for _, d := range deps {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}

	return out
}

// goroutineID returns the current goroutine's id, parsed from the stack
// header ("goroutine N [running]:").
func goroutineID() int64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)

	fields := strings.Fields(string(buf[:n]))

	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return -1
	}

	return id
}

// suppliedValue applies the caller-argument rule: a supplied value is used
// verbatim when it is not a mapping, or when it is a mapping and the
// parameter is the generic map type. Otherwise the (possible) mapping is
// returned for use as nested arguments.
func (c *containerImpl) suppliedValue(args Args, p Param) (value any, verbatim bool) {
	v, ok := args[p.Name]
	if !ok {
		return nil, false
	}

	if _, isMap := asArgs(v); !isMap || c.types.MapType(p.Type) {
		return v, true
	}

	return v, false
}
