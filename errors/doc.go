// Package errors provides structured error types for the bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: argument path, Go type and wire kind names,
// and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
//		Path("Add", "arg0").
//		GoType("int32").
//		WireType("text").
//		Detail("cannot convert text to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseConvert, path, "int32", "text")
//	err := errors.StaleHandle(7)
//
// The failure taxonomy of the call path is exposed as sentinels
// (ErrBinding, ErrInvocation, ErrStaleHandle, ErrConflict, ErrConfiguration).
// All errors implement the standard error interface and support errors.Is/As.
package errors
