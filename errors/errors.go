package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseBind     Phase = "bind"     // member to invoker binding
	PhaseConvert  Phase = "convert"  // wire <-> native conversion
	PhaseInvoke   Phase = "invoke"   // native member call
	PhaseDispatch Phase = "dispatch" // call handler
	PhaseRegister Phase = "register" // export table build
	PhaseConfig   Phase = "config"   // configuration loading
	PhaseHeap     Phase = "heap"     // object handle resolution
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch      Kind = "type_mismatch"
	KindOverflow          Kind = "overflow"
	KindArity             Kind = "arity"
	KindNoConverter       Kind = "no_converter"
	KindNotFound          Kind = "not_found"
	KindStaleHandle       Kind = "stale_handle"
	KindConflict          Kind = "conflict"
	KindInvalidAttributes Kind = "invalid_attributes"
	KindInvocation        Kind = "invocation"
	KindPanic             Kind = "panic"
	KindInvalidInput      Kind = "invalid_input"
	KindNotInitialized    Kind = "not_initialized"
	KindUnsupported       Kind = "unsupported"
)

// Sentinels for the failure taxonomy. Match with errors.Is; any *Error with
// the same Phase and Kind matches.
var (
	ErrBinding       = &Error{Phase: PhaseBind, Kind: KindNoConverter}
	ErrInvocation    = &Error{Phase: PhaseInvoke, Kind: KindInvocation}
	ErrStaleHandle   = &Error{Phase: PhaseHeap, Kind: KindStaleHandle}
	ErrConflict      = &Error{Phase: PhaseRegister, Kind: KindConflict}
	ErrConfiguration = &Error{Phase: PhaseRegister, Kind: KindInvalidAttributes}
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	WireType string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	hasType := e.GoType != "" || e.WireType != ""
	if hasType {
		b.WriteString(": ")
		switch {
		case e.GoType != "" && e.WireType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", wire kind ")
			b.WriteString(e.WireType)
		case e.GoType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		default:
			b.WriteString("wire kind ")
			b.WriteString(e.WireType)
		}
	}

	if e.Detail != "" {
		if hasType {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the argument path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// WireType sets the wire kind name
func (b *Builder) WireType(t string) *Builder {
	b.err.WireType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, wireType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		GoType:   goType,
		WireType: wireType,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		GoType: targetType,
		Detail: fmt.Sprintf("value %v does not fit %s", value, targetType),
		Value:  value,
	}
}

// Arity creates an argument count error
func Arity(phase Phase, member string, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArity,
		Detail: fmt.Sprintf("%s expects %d argument(s), got %d", member, want, got),
	}
}

// NoConverter creates a missing converter error
func NoConverter(path []string, goType, wireType string) *Error {
	return &Error{
		Phase:    PhaseBind,
		Kind:     KindNoConverter,
		Path:     path,
		GoType:   goType,
		WireType: wireType,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// StaleHandle creates an unknown or released handle error
func StaleHandle(handle uint64) *Error {
	return &Error{
		Phase:  PhaseHeap,
		Kind:   KindStaleHandle,
		Detail: fmt.Sprintf("handle %d does not reference a live object", handle),
		Value:  handle,
	}
}

// Conflict creates a duplicate registration error
func Conflict(name string, exportID uint32) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindConflict,
		Detail: fmt.Sprintf("export %q (id %d) duplicates an earlier registration", name, exportID),
		Value:  exportID,
	}
}

// InvalidAttributes creates a configuration error for an export's attribute set
func InvalidAttributes(name string, detail string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindInvalidAttributes,
		Detail: fmt.Sprintf("export %q: %s", name, detail),
	}
}

// Invocation wraps a failure raised by a native member
func Invocation(member string, cause error) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindInvocation,
		Detail: fmt.Sprintf("call %s", member),
		Cause:  cause,
	}
}

// Panic creates an error from a recovered panic value
func Panic(phase Phase, member string, recovered any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindPanic,
		Detail: fmt.Sprintf("%s panicked: %v", member, recovered),
		Value:  recovered,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotInitialized creates a not-initialized error
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a configuration parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
