package canister

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// MapIdentifier is the identifier reported for constructor parameters
// declared as the generic argument-map type (Args or map[string]any).
// Autowire passes caller-supplied mappings verbatim to such parameters.
const MapIdentifier = "map"

// Param describes one constructor parameter of a constructible type, in
// declaration order.
type Param struct {
	// Name is the parameter name supplied at registration.
	Name string

	// Type is the identifier of the declared parameter type: the registered
	// name when the type is known to the registry, MapIdentifier for the
	// generic argument-map type, the reflect string otherwise, and empty for
	// a plain interface{} parameter (no usable declared type).
	Type string

	// Variadic marks the trailing variadic parameter.
	Variadic bool
}

// Introspector is the type-introspection facility the container consults
// during autowiring and strict-mode verification. It is a pure query service
// apart from Construct, which invokes a constructor.
//
// Go reflection does not expose constructor-parameter names, so the default
// implementation (TypeRegistry) is fed constructor metadata explicitly at
// composition time. Alternative sources (code generation, static analysis)
// can implement this interface instead.
type Introspector interface {
	// Constructible reports whether name denotes a constructible type.
	Constructible(name string) bool

	// MapType reports whether name denotes the generic argument-map type.
	MapType(name string) bool

	// Params returns the ordered constructor parameters of name.
	Params(name string) ([]Param, error)

	// Construct invokes the constructor of name with args in parameter
	// order, coercing each value to the declared parameter type.
	Construct(name string, args []any) (any, error)

	// Satisfies reports whether instance is assignable to the type declared
	// or registered under name.
	Satisfies(instance any, name string) bool
}

// typeEntry holds one constructible type registration.
type typeEntry struct {
	name    string
	typ     reflect.Type  // produced type
	ctor    reflect.Value // invalid for zero-value registrations
	params  []paramSpec
	withErr bool // constructor returns (T, error)
}

// paramSpec keeps the raw reflect type; the identifier is resolved at query
// time so registration order between dependent types does not matter.
type paramSpec struct {
	name     string
	typ      reflect.Type
	variadic bool
}

// TypeRegistry is the default Introspector. Concrete types are registered
// with a constructor function and ordered parameter names; interface types
// are declared for strict-mode verification and parameter-type lookup.
type TypeRegistry struct {
	mu       sync.RWMutex
	types    map[string]*typeEntry
	declared map[string]reflect.Type
	byType   map[reflect.Type]string
}

// NewTypeRegistry creates an empty type registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		types:    make(map[string]*typeEntry),
		declared: make(map[string]reflect.Type),
		byType:   make(map[reflect.Type]string),
	}
}

// RegisterType registers a constructible type under name. The constructor
// must be a function returning the produced type, optionally with a trailing
// error. paramNames supplies the name of every constructor parameter in
// order; the count must match the constructor's arity.
func (r *TypeRegistry) RegisterType(name string, constructor any, paramNames ...string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidIdentifier("RegisterType")
	}

	if constructor == nil {
		return ErrInvalidFactory
	}

	fn := reflect.ValueOf(constructor)
	fnType := fn.Type()

	if fnType.Kind() != reflect.Func {
		return NewError(
			CodeInvalidConstructor,
			fmt.Sprintf("type '%s': constructor must be a function, got %T", name, constructor),
			nil,
		).WithContext("type", name)
	}

	withErr, err := validateResults(name, fnType)
	if err != nil {
		return err
	}

	if len(paramNames) != fnType.NumIn() {
		return NewError(
			CodeInvalidConstructor,
			fmt.Sprintf(
				"type '%s': constructor takes %d parameters but %d names were given",
				name, fnType.NumIn(), len(paramNames),
			),
			nil,
		).WithContext("type", name)
	}

	params := make([]paramSpec, 0, fnType.NumIn())

	for i := 0; i < fnType.NumIn(); i++ {
		pname := paramNames[i]
		if strings.TrimSpace(pname) == "" {
			return NewError(
				CodeInvalidConstructor,
				fmt.Sprintf("type '%s': parameter %d has an empty name", name, i),
				nil,
			).WithContext("type", name)
		}

		params = append(params, paramSpec{
			name:     pname,
			typ:      fnType.In(i),
			variadic: fnType.IsVariadic() && i == fnType.NumIn()-1,
		})
	}

	entry := &typeEntry{
		name:    name,
		typ:     fnType.Out(0),
		ctor:    fn,
		params:  params,
		withErr: withErr,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[name]; exists {
		return ErrDuplicateType(name)
	}

	r.types[name] = entry
	r.byType[entry.typ] = name

	return nil
}

// validateResults checks the constructor's return shape: one produced value,
// optionally followed by an error.
func validateResults(name string, fnType reflect.Type) (withErr bool, err error) {
	errType := reflect.TypeOf((*error)(nil)).Elem()

	switch fnType.NumOut() {
	case 1:
		if fnType.Out(0).Implements(errType) {
			return false, invalidResults(name)
		}

		return false, nil
	case 2:
		if !fnType.Out(1).Implements(errType) || fnType.Out(0).Implements(errType) {
			return false, invalidResults(name)
		}

		return true, nil
	default:
		return false, invalidResults(name)
	}
}

func invalidResults(name string) *Error {
	return NewError(
		CodeInvalidConstructor,
		fmt.Sprintf("type '%s': constructor must return (T) or (T, error)", name),
		nil,
	).WithContext("type", name)
}

// RegisterZero registers name as constructible without a constructor; it is
// built as the zero value of T (a new T for pointer types). Arguments passed
// to Construct are ignored on this path.
func RegisterZero[T any](r *TypeRegistry, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidIdentifier("RegisterZero")
	}

	typ := reflect.TypeOf((*T)(nil)).Elem()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[name]; exists {
		return ErrDuplicateType(name)
	}

	r.types[name] = &typeEntry{name: name, typ: typ}
	r.byType[typ] = name

	return nil
}

// Declare records T under name without making it constructible. Declared
// names take part in strict-mode verification, and constructor parameters of
// type T report name as their declared type, linking them to registered
// interfaces.
func Declare[T any](r *TypeRegistry, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidIdentifier("Declare")
	}

	typ := reflect.TypeOf((*T)(nil)).Elem()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.declared[name]; exists {
		return ErrDuplicateType(name)
	}

	r.declared[name] = typ
	r.byType[typ] = name

	return nil
}

// Constructible reports whether name denotes a constructible type.
func (r *TypeRegistry) Constructible(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.types[name]

	return ok
}

// MapType reports whether name denotes the generic argument-map type.
func (r *TypeRegistry) MapType(name string) bool {
	return name == MapIdentifier
}

// Params returns the ordered constructor parameters of name.
func (r *TypeRegistry) Params(name string) ([]Param, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.types[name]
	if !ok {
		return nil, ErrNotRegistered(name)
	}

	params := make([]Param, 0, len(entry.params))
	for _, spec := range entry.params {
		params = append(params, Param{
			Name:     spec.name,
			Type:     r.identifierFor(spec.typ),
			Variadic: spec.variadic,
		})
	}

	return params, nil
}

// identifierFor maps a parameter's reflect type to its identifier. Must hold
// at least a read lock.
func (r *TypeRegistry) identifierFor(t reflect.Type) string {
	if name, ok := r.byType[t]; ok {
		return name
	}

	if t == argsType || t == rawMapType {
		return MapIdentifier
	}

	// interface{} carries no declared type
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return ""
	}

	return t.String()
}

var (
	argsType   = reflect.TypeOf(Args{})
	rawMapType = reflect.TypeOf(map[string]any{})
)

// Construct invokes the constructor of name with args in parameter order.
// Values are coerced to the declared parameter types: directly assignable
// values pass through, everything else goes through a weakly-typed decode so
// JSON-shaped literals (strings for numbers, maps for structs) work.
func (r *TypeRegistry) Construct(name string, args []any) (any, error) {
	r.mu.RLock()
	entry, ok := r.types[name]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrNotRegistered(name)
	}

	// Zero-value registration: build without a constructor.
	if !entry.ctor.IsValid() {
		if entry.typ.Kind() == reflect.Ptr {
			return reflect.New(entry.typ.Elem()).Interface(), nil
		}

		return reflect.Zero(entry.typ).Interface(), nil
	}

	fnType := entry.ctor.Type()

	want := fnType.NumIn()
	if fnType.IsVariadic() {
		want--
	}

	if len(args) != want {
		return nil, NewError(
			CodeInvalidConstructor,
			fmt.Sprintf("type '%s': constructor takes %d arguments, got %d", name, want, len(args)),
			nil,
		).WithContext("type", name)
	}

	in := make([]reflect.Value, 0, want)

	for i := 0; i < want; i++ {
		value, err := coerce(args[i], fnType.In(i))
		if err != nil {
			return nil, NewError(
				CodeTypeMismatch,
				fmt.Sprintf(
					"type '%s': argument '%s' of type %s cannot hold %T",
					name, entry.params[i].name, fnType.In(i), args[i],
				),
				err,
			).WithContext("type", name).
				WithContext("parameter", entry.params[i].name)
		}

		in = append(in, value)
	}

	out := entry.ctor.Call(in)

	if entry.withErr && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}

	return out[0].Interface(), nil
}

// coerce adapts a resolved argument to the declared parameter type.
func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	out := reflect.New(t)

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out.Interface(),
	})
	if err != nil {
		return reflect.Value{}, err
	}

	if err := dec.Decode(v); err != nil {
		return reflect.Value{}, err
	}

	return out.Elem(), nil
}

// Satisfies reports whether instance is assignable to the type declared or
// registered under name. Unknown names satisfy nothing.
func (r *TypeRegistry) Satisfies(instance any, name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var want reflect.Type

	if t, ok := r.declared[name]; ok {
		want = t
	} else if entry, ok := r.types[name]; ok {
		want = entry.typ
	} else {
		return false
	}

	if instance == nil {
		return false
	}

	return reflect.TypeOf(instance).AssignableTo(want)
}

// TypeNames returns all constructible type names, unordered.
func (r *TypeRegistry) TypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}

	return names
}
