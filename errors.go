package canister

import (
	"fmt"
	"strings"
)

// =============================================================================
// ERROR CODES
// =============================================================================

const (
	// CodeInvalidIdentifier indicates an empty or whitespace-only identifier.
	CodeInvalidIdentifier = "INVALID_IDENTIFIER"

	// CodeInvalidFactory indicates a nil factory function.
	CodeInvalidFactory = "INVALID_FACTORY"

	// CodeInvalidConstructor indicates an unusable constructor registration.
	CodeInvalidConstructor = "INVALID_CONSTRUCTOR"

	// CodeInvalidArgumentTable indicates a malformed ArgumentMapper table.
	CodeInvalidArgumentTable = "INVALID_ARGUMENT_TABLE"

	// CodeDuplicateInterface indicates an identifier is already registered.
	CodeDuplicateInterface = "DUPLICATE_INTERFACE"

	// CodeDuplicateType indicates a type name is already registered.
	CodeDuplicateType = "DUPLICATE_TYPE"

	// CodeNotRegistered indicates an unknown identifier was queried.
	CodeNotRegistered = "NOT_REGISTERED"

	// CodeTypeMismatch indicates a produced instance does not satisfy its
	// identifier under strict mode, or an argument cannot be coerced.
	CodeTypeMismatch = "TYPE_MISMATCH"

	// CodeAutowireTypeNotFound indicates the autowire target is unknown.
	CodeAutowireTypeNotFound = "AUTOWIRE_TYPE_NOT_FOUND"

	// CodeAutowireVariadic indicates a variadic constructor parameter.
	CodeAutowireVariadic = "AUTOWIRE_VARIADIC_PARAM"

	// CodeAutowireUntyped indicates a constructor parameter without a
	// declared type.
	CodeAutowireUntyped = "AUTOWIRE_UNTYPED_PARAM"

	// CodeAutowireUnresolvable indicates no value could be determined for a
	// constructor parameter.
	CodeAutowireUnresolvable = "AUTOWIRE_UNRESOLVABLE_PARAM"

	// CodeAutowireCycle indicates a circular dependency during autowiring.
	CodeAutowireCycle = "AUTOWIRE_CYCLE"

	// CodeArgumentResolution indicates an ArgumentMapper producer yielded
	// something other than an argument map.
	CodeArgumentResolution = "ARGUMENT_RESOLUTION"
)

// =============================================================================
// ERROR TYPE
// =============================================================================

// Error is the error type used throughout the container. Errors carry a
// machine-readable code, a human-readable message naming the offending
// identifier, structured context, and an optional cause.
//
// errors.Is matches two Errors by code, so sentinel comparisons like
// errors.Is(err, ErrNotRegistered("x")) hold for any identifier.
type Error struct {
	Code    string
	Message string
	Context map[string]any
	Cause   error
}

// NewError creates an Error with the given code, message and cause.
func NewError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Code == t.Code
}

// WithContext attaches a key/value pair for diagnostics.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}

	e.Context[key] = value

	return e
}

// IsAutowireError reports whether err is any of the autowiring failure
// causes, including cycle detection.
func IsAutowireError(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}

	return strings.HasPrefix(e.Code, "AUTOWIRE_")
}

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

// ErrInvalidFactory is returned when a nil factory is registered.
var ErrInvalidFactory = NewError(CodeInvalidFactory, "factory cannot be nil", nil)

// =============================================================================
// ERROR CONSTRUCTORS
// =============================================================================

// ErrInvalidIdentifier creates an error for an empty or whitespace-only
// identifier passed to op.
func ErrInvalidIdentifier(op string) *Error {
	return NewError(
		CodeInvalidIdentifier,
		fmt.Sprintf("%s: identifier must be a non-empty string", op),
		nil,
	).WithContext("operation", op)
}

// ErrDuplicateInterface creates an error for re-registering an identifier
// without the overwrite option.
func ErrDuplicateInterface(id string) *Error {
	return NewError(
		CodeDuplicateInterface,
		fmt.Sprintf("interface '%s' is already registered", id),
		nil,
	).WithContext("interface", id)
}

// ErrDuplicateType creates an error for re-registering a type name.
func ErrDuplicateType(name string) *Error {
	return NewError(
		CodeDuplicateType,
		fmt.Sprintf("type '%s' is already registered", name),
		nil,
	).WithContext("type", name)
}

// ErrNotRegistered creates an error for querying an unknown identifier.
func ErrNotRegistered(id string) *Error {
	return NewError(
		CodeNotRegistered,
		fmt.Sprintf("'%s' is not registered", id),
		nil,
	).WithContext("interface", id)
}

// ErrTypeMismatch creates an error for a strict-mode verification failure.
func ErrTypeMismatch(id string, actual any) *Error {
	return NewError(
		CodeTypeMismatch,
		fmt.Sprintf("instance of type %T does not satisfy interface '%s'", actual, id),
		nil,
	).WithContext("interface", id).
		WithContext("actual_type", fmt.Sprintf("%T", actual))
}

// ErrAutowireTypeNotFound creates an error for an autowire target that does
// not name a constructible type.
func ErrAutowireTypeNotFound(typeName string) *Error {
	return NewError(
		CodeAutowireTypeNotFound,
		fmt.Sprintf("type '%s' cannot be found", typeName),
		nil,
	).WithContext("type", typeName)
}

// ErrAutowireVariadic creates an error for a variadic constructor parameter.
func ErrAutowireVariadic(typeName, param string) *Error {
	return NewError(
		CodeAutowireVariadic,
		fmt.Sprintf("type '%s': variadic argument '%s' may not be autowired", typeName, param),
		nil,
	).WithContext("type", typeName).
		WithContext("parameter", param)
}

// ErrAutowireUntyped creates an error for a constructor parameter without a
// declared type.
func ErrAutowireUntyped(typeName, param string) *Error {
	return NewError(
		CodeAutowireUntyped,
		fmt.Sprintf("type '%s': constructor argument '%s' must have a declared type", typeName, param),
		nil,
	).WithContext("type", typeName).
		WithContext("parameter", param)
}

// ErrAutowireUnresolvable creates an error for a constructor parameter whose
// value cannot be determined.
func ErrAutowireUnresolvable(typeName, param, declared string) *Error {
	return NewError(
		CodeAutowireUnresolvable,
		fmt.Sprintf(
			"type '%s': cannot determine value for argument '%s' of type '%s', try declaring this argument",
			typeName, param, declared,
		),
		nil,
	).WithContext("type", typeName).
		WithContext("parameter", param).
		WithContext("declared_type", declared)
}

// ErrAutowireCycle creates an error for a circular dependency chain.
func ErrAutowireCycle(chain []string) *Error {
	return NewError(
		CodeAutowireCycle,
		fmt.Sprintf("circular dependency detected: %s", strings.Join(chain, " -> ")),
		nil,
	).WithContext("chain", chain)
}

// ErrInvalidArgumentTable creates an error for a malformed ArgumentMapper
// table entry.
func ErrInvalidArgumentTable(id, reason string) *Error {
	return NewError(
		CodeInvalidArgumentTable,
		fmt.Sprintf("argument table entry '%s': %s", id, reason),
		nil,
	).WithContext("entry", id)
}

// ErrArgumentResolution creates an error for a deferred argument producer
// that yielded something other than an argument map.
func ErrArgumentResolution(id string, produced any) *Error {
	return NewError(
		CodeArgumentResolution,
		fmt.Sprintf("argument producer for '%s' returned %T instead of an argument map", id, produced),
		nil,
	).WithContext("entry", id).
		WithContext("produced_type", fmt.Sprintf("%T", produced))
}
