package canister

import "context"

// Middleware provides hooks for intercepting container operations.
// Middleware can be used for logging, metrics, security, testing, etc.
type Middleware interface {
	// BeforeResolve is called before producing or returning an instance.
	// Return error to abort resolution.
	BeforeResolve(ctx context.Context, id string) error

	// AfterResolve is called after resolution.
	// Called even if resolution failed (instance and err may both be set).
	AfterResolve(ctx context.Context, id string, instance any, err error) error

	// BeforeAutowire is called before autowiring a type.
	// Return error to abort construction.
	BeforeAutowire(ctx context.Context, typeName string) error

	// AfterAutowire is called after autowiring.
	// Called even if construction failed.
	AfterAutowire(ctx context.Context, typeName string, instance any, err error) error
}

// middlewareChain manages multiple middleware.
type middlewareChain struct {
	middleware []Middleware
}

// newMiddlewareChain creates a new middleware chain.
func newMiddlewareChain() *middlewareChain {
	return &middlewareChain{
		middleware: make([]Middleware, 0),
	}
}

// add appends middleware to the chain.
func (m *middlewareChain) add(middleware Middleware) {
	m.middleware = append(m.middleware, middleware)
}

// beforeResolve calls BeforeResolve on all middleware.
func (m *middlewareChain) beforeResolve(ctx context.Context, id string) error {
	for _, mw := range m.middleware {
		if err := mw.BeforeResolve(ctx, id); err != nil {
			return err
		}
	}

	return nil
}

// afterResolve calls AfterResolve on all middleware.
func (m *middlewareChain) afterResolve(ctx context.Context, id string, instance any, err error) error {
	for _, mw := range m.middleware {
		if mwErr := mw.AfterResolve(ctx, id, instance, err); mwErr != nil {
			return mwErr
		}
	}

	return nil
}

// beforeAutowire calls BeforeAutowire on all middleware.
func (m *middlewareChain) beforeAutowire(ctx context.Context, typeName string) error {
	for _, mw := range m.middleware {
		if err := mw.BeforeAutowire(ctx, typeName); err != nil {
			return err
		}
	}

	return nil
}

// afterAutowire calls AfterAutowire on all middleware.
func (m *middlewareChain) afterAutowire(ctx context.Context, typeName string, instance any, err error) error {
	for _, mw := range m.middleware {
		if mwErr := mw.AfterAutowire(ctx, typeName, instance, err); mwErr != nil {
			return mwErr
		}
	}

	return nil
}

// FuncMiddleware wraps functions as Middleware.
type FuncMiddleware struct {
	BeforeResolveFunc  func(ctx context.Context, id string) error
	AfterResolveFunc   func(ctx context.Context, id string, instance any, err error) error
	BeforeAutowireFunc func(ctx context.Context, typeName string) error
	AfterAutowireFunc  func(ctx context.Context, typeName string, instance any, err error) error
}

// BeforeResolve implements Middleware.
func (f *FuncMiddleware) BeforeResolve(ctx context.Context, id string) error {
	if f.BeforeResolveFunc != nil {
		return f.BeforeResolveFunc(ctx, id)
	}

	return nil
}

// AfterResolve implements Middleware.
func (f *FuncMiddleware) AfterResolve(ctx context.Context, id string, instance any, err error) error {
	if f.AfterResolveFunc != nil {
		return f.AfterResolveFunc(ctx, id, instance, err)
	}

	return nil
}

// BeforeAutowire implements Middleware.
func (f *FuncMiddleware) BeforeAutowire(ctx context.Context, typeName string) error {
	if f.BeforeAutowireFunc != nil {
		return f.BeforeAutowireFunc(ctx, typeName)
	}

	return nil
}

// AfterAutowire implements Middleware.
func (f *FuncMiddleware) AfterAutowire(ctx context.Context, typeName string, instance any, err error) error {
	if f.AfterAutowireFunc != nil {
		return f.AfterAutowireFunc(ctx, typeName, instance, err)
	}

	return nil
}
