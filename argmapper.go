package canister

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// argumentSource is the stored variant for one table entry: a literal
// argument map, or a deferred producer invoked on every lookup.
type argumentSource struct {
	literal  Args
	deferred func() any
}

// ArgumentMapper holds an immutable table of type identifier to default
// constructor arguments. When the container carries a mapper, every Autowire
// call merges the target's defaults under the caller-supplied arguments;
// keys present on both sides resolve in favor of the caller.
type ArgumentMapper struct {
	sources map[string]argumentSource
}

// NewArgumentMapper builds a mapper from table. Every key must be a
// non-empty, non-whitespace string and every value either an argument map
// (Args or map[string]any) or a deferred zero-argument producer
// (func() Args or func() any). All violations are collected and reported
// together.
func NewArgumentMapper(table map[string]any) (*ArgumentMapper, error) {
	sources := make(map[string]argumentSource, len(table))

	var errs error

	for id, value := range table {
		if strings.TrimSpace(id) == "" {
			errs = multierr.Append(errs, ErrInvalidArgumentTable(id, "identifier must be a non-empty string"))
			continue
		}

		switch v := value.(type) {
		case Args:
			sources[id] = argumentSource{literal: v}
		case map[string]any:
			sources[id] = argumentSource{literal: Args(v)}
		case func() any:
			sources[id] = argumentSource{deferred: v}
		case func() Args:
			sources[id] = argumentSource{deferred: func() any { return v() }}
		case func() map[string]any:
			sources[id] = argumentSource{deferred: func() any { return v() }}
		default:
			errs = multierr.Append(errs, ErrInvalidArgumentTable(
				id, fmt.Sprintf("value must be an argument map or a producer, got %T", value),
			))
		}
	}

	if errs != nil {
		return nil, errs
	}

	return &ArgumentMapper{sources: sources}, nil
}

// HasArgument reports whether defaults are stored for id.
func (m *ArgumentMapper) HasArgument(id string) bool {
	if strings.TrimSpace(id) == "" {
		return false
	}

	_, ok := m.sources[id]

	return ok
}

// Arguments returns the defaults stored for id. A literal entry is returned
// as stored; a deferred producer is invoked anew on every call and its
// result must be an argument map.
func (m *ArgumentMapper) Arguments(id string) (Args, error) {
	source, ok := m.sources[id]
	if !ok {
		return nil, ErrNotRegistered(id)
	}

	if source.deferred == nil {
		return source.literal, nil
	}

	produced := source.deferred()

	args, ok := asArgs(produced)
	if !ok {
		return nil, ErrArgumentResolution(id, produced)
	}

	return args, nil
}

// Map merges the defaults for id under args: keys already present in args
// win. When id has no entry, args is returned unchanged. The merge never
// mutates args or the stored table.
func (m *ArgumentMapper) Map(id string, args Args) (Args, error) {
	if !m.HasArgument(id) {
		return args, nil
	}

	defaults, err := m.Arguments(id)
	if err != nil {
		return nil, err
	}

	merged := make(Args, len(args)+len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}

	for k, v := range args {
		merged[k] = v
	}

	return merged, nil
}

// asArgs reports whether v is an argument map, normalizing the raw map form.
func asArgs(v any) (Args, bool) {
	switch m := v.(type) {
	case Args:
		return m, true
	case map[string]any:
		return Args(m), true
	default:
		return nil, false
	}
}
