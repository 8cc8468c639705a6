package canister

import "go.uber.org/zap"

// Option configures a container at construction time.
type Option func(*containerImpl)

// WithStrict makes the container verify, at production time, that every
// instance satisfies the type declared or registered under its identifier.
func WithStrict() Option {
	return func(c *containerImpl) {
		c.strict = true
	}
}

// WithArgumentMapper injects the mapper consulted by every Autowire call.
func WithArgumentMapper(m *ArgumentMapper) Option {
	return func(c *containerImpl) {
		c.mapper = m
	}
}

// WithTypes sets the type-introspection facility. Defaults to a fresh
// TypeRegistry; pass a shared registry so composition code can register
// constructible types on it.
func WithTypes(i Introspector) Option {
	return func(c *containerImpl) {
		c.types = i
	}
}

// WithLogger sets the logger for registration and resolution debug output.
func WithLogger(log *zap.Logger) Option {
	return func(c *containerImpl) {
		c.log = log
	}
}

// WithMiddleware appends middleware at construction time.
func WithMiddleware(mws ...Middleware) Option {
	return func(c *containerImpl) {
		for _, mw := range mws {
			c.middleware.add(mw)
		}
	}
}

// RegisterOption is a configuration option for interface registration.
type RegisterOption func(*registerConfig)

type registerConfig struct {
	overwrite bool
}

// WithOverwrite allows a registration to replace an existing identifier.
// A shared instance cached before the overwrite is not evicted.
func WithOverwrite() RegisterOption {
	return func(cfg *registerConfig) {
		cfg.overwrite = true
	}
}

// applyRegisterOptions merges registration options.
func applyRegisterOptions(opts []RegisterOption) registerConfig {
	var cfg registerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
