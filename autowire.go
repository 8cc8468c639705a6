package canister

import "strings"

// autowire is the resolution engine behind Autowire. For each constructor
// parameter of typeName, in declaration order, the value is taken from the
// first source that can supply it:
//
//  1. the caller-supplied argument map (verbatim, unless the value is a
//     mapping destined for a non-map parameter),
//  2. the container's registry, when the parameter's declared type is a
//     registered interface (shared instance),
//  3. recursive construction, when the declared type is itself
//     constructible; a mapping supplied under the parameter name becomes
//     the nested argument map.
//
// Before any of that, the ArgumentMapper's defaults for typeName are merged
// under args (caller keys win), and a typeName that is itself a registered
// interface short-circuits to its shared instance, ignoring args entirely.
//
// stack carries the chain of types currently under construction; revisiting
// one is a cycle and fails instead of recursing forever.
func (c *containerImpl) autowire(typeName string, args Args, stack []string) (any, error) {
	if strings.TrimSpace(typeName) == "" {
		return nil, ErrInvalidIdentifier("Autowire")
	}

	if c.mapper != nil {
		mapped, err := c.mapper.Map(typeName, args)
		if err != nil {
			return nil, err
		}

		args = mapped
	}

	// Registered bindings take precedence over ad-hoc construction.
	if c.HasInterface(typeName) {
		return c.resolveShared(typeName)
	}

	for _, seen := range stack {
		if seen == typeName {
			return nil, ErrAutowireCycle(append(stack, typeName))
		}
	}

	stack = append(stack, typeName)

	if !c.types.Constructible(typeName) {
		return nil, ErrAutowireTypeNotFound(typeName)
	}

	params, err := c.types.Params(typeName)
	if err != nil {
		return nil, err
	}

	if len(params) == 0 {
		return c.types.Construct(typeName, nil)
	}

	resolved := make([]any, 0, len(params))

	for _, p := range params {
		if p.Variadic {
			return nil, ErrAutowireVariadic(typeName, p.Name)
		}

		if p.Type == "" {
			return nil, ErrAutowireUntyped(typeName, p.Name)
		}

		supplied, verbatim := c.suppliedValue(args, p)
		if verbatim {
			resolved = append(resolved, supplied)
			continue
		}

		switch {
		case c.HasInterface(p.Type):
			instance, err := c.resolveShared(p.Type)
			if err != nil {
				return nil, err
			}

			resolved = append(resolved, instance)

		case c.types.Constructible(p.Type):
			sub := Args{}
			if m, ok := asArgs(supplied); ok {
				sub = m
			}

			instance, err := c.autowire(p.Type, sub, stack)
			if err != nil {
				return nil, err
			}

			resolved = append(resolved, instance)

		default:
			return nil, ErrAutowireUnresolvable(typeName, p.Name, p.Type)
		}
	}

	return c.types.Construct(typeName, resolved)
}
