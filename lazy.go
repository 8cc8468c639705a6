package canister

import (
	"fmt"
	"sync"
)

// Lazy wraps an interface whose shared instance is resolved on first access.
// Useful for breaking construction-time circular dependencies or deferring
// expensive instances until they are actually needed.
type Lazy[T any] struct {
	container Container
	id        string
	once      sync.Once
	value     T
	err       error
	resolved  bool
}

// NewLazy creates a lazy wrapper around the interface registered under id.
func NewLazy[T any](container Container, id string) *Lazy[T] {
	return &Lazy[T]{
		container: container,
		id:        id,
	}
}

// Get resolves the shared instance. Resolution happens only once;
// subsequent calls return the cached value or the original error.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.value, l.err = Resolve[T](l.container, l.id)
		l.resolved = l.err == nil
	})

	return l.value, l.err
}

// MustGet resolves the shared instance, panicking on error.
func (l *Lazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("lazy interface %s failed: %v", l.id, err))
	}

	return value
}

// IsResolved reports whether the instance has been resolved.
func (l *Lazy[T]) IsResolved() bool {
	return l.resolved
}

// ID returns the interface identifier.
func (l *Lazy[T]) ID() string {
	return l.id
}

// OptionalLazy wraps an interface that may not be registered. The zero value
// is returned without error when the identifier is unknown.
type OptionalLazy[T any] struct {
	container Container
	id        string
	once      sync.Once
	value     T
	err       error
	resolved  bool
	found     bool
}

// NewOptionalLazy creates an optional lazy wrapper for id.
func NewOptionalLazy[T any](container Container, id string) *OptionalLazy[T] {
	return &OptionalLazy[T]{
		container: container,
		id:        id,
	}
}

// Get resolves the shared instance, or returns the zero value without error
// when id is not registered.
func (l *OptionalLazy[T]) Get() (T, error) {
	l.once.Do(func() {
		if !l.container.HasInterface(l.id) {
			l.resolved = true

			return
		}

		l.value, l.err = Resolve[T](l.container, l.id)
		if l.err == nil {
			l.resolved = true
			l.found = true
		}
	})

	return l.value, l.err
}

// MustGet resolves the shared instance, panicking on error. An unregistered
// identifier yields the zero value without panicking.
func (l *OptionalLazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("optional lazy interface %s failed: %v", l.id, err))
	}

	return value
}

// IsResolved reports whether resolution has been attempted and succeeded.
func (l *OptionalLazy[T]) IsResolved() bool {
	return l.resolved
}

// IsFound reports whether the interface was registered. Only meaningful
// after resolution.
func (l *OptionalLazy[T]) IsFound() bool {
	return l.found
}

// ID returns the interface identifier.
func (l *OptionalLazy[T]) ID() string {
	return l.id
}

// Provider hands out a fresh instance on every access, bypassing the shared
// instance cache.
type Provider[T any] struct {
	container Container
	id        string
}

// NewProvider creates a provider for the interface registered under id.
func NewProvider[T any](container Container, id string) *Provider[T] {
	return &Provider[T]{
		container: container,
		id:        id,
	}
}

// Provide builds and returns a fresh instance.
func (p *Provider[T]) Provide() (T, error) {
	return Build[T](p.container, p.id)
}

// MustProvide builds a fresh instance, panicking on error.
func (p *Provider[T]) MustProvide() T {
	value, err := p.Provide()
	if err != nil {
		panic(fmt.Sprintf("provider %s failed: %v", p.id, err))
	}

	return value
}

// ID returns the interface identifier.
func (p *Provider[T]) ID() string {
	return p.id
}
