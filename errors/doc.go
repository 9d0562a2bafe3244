// Package errors provides structured error types for the go-lld bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the argument path, the foreign symbol involved, the
// offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMarshal, errors.KindEncoding).
//		Path("args[3]").
//		Value(3).
//		Detail("argument contains an embedded NUL byte").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.EmbeddedNUL(3, arg)
//	err := errors.LinkFailure("elf", messages)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
