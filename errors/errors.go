package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in an invocation the error occurred
type Phase string

const (
	PhaseMarshal Phase = "marshal" // Go arguments to foreign argv
	PhaseInvoke  Phase = "invoke"  // entry point call and its outcome
	PhaseCopy    Phase = "copy"    // diagnostic text to Go memory
	PhaseRelease Phase = "release" // foreign record release
	PhaseLoad    Phase = "load"    // backend loading
	PhaseConfig  Phase = "config"  // option and flag handling
)

// Kind categorizes the error
type Kind string

const (
	KindEncoding       Kind = "encoding"
	KindLinkFailure    Kind = "link_failure"
	KindOverflow       Kind = "overflow"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindAllocation     Kind = "allocation"
	KindUnsupported    Kind = "unsupported"
	KindMissingExport  Kind = "missing_export"
	KindReleased       Kind = "released"
	KindClosed         Kind = "closed"
	KindInvalidInput   Kind = "invalid_input"
	KindInvalidFlavor  Kind = "invalid_flavor"
	KindNotInitialized Kind = "not_initialized"
	KindInstantiation  Kind = "instantiation"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Flavor string
	Symbol string
	Detail string
	Path   []string
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

	if e.Flavor != "" || e.Symbol != "" {
		b.WriteString(": ")
		if e.Flavor != "" && e.Symbol != "" {
			b.WriteString("flavor ")
			b.WriteString(e.Flavor)
			b.WriteString(", symbol ")
			b.WriteString(e.Symbol)
		} else if e.Flavor != "" {
			b.WriteString("flavor ")
			b.WriteString(e.Flavor)
		} else {
			b.WriteString("symbol ")
			b.WriteString(e.Symbol)
		}
	}

	if e.Detail != "" {
		if e.Flavor != "" || e.Symbol != "" {
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

// Flavor sets the linker flavor name
func (b *Builder) Flavor(f string) *Builder {
	b.err.Flavor = f
	return b
}

// Symbol sets the foreign symbol name
func (b *Builder) Symbol(s string) *Builder {
	b.err.Symbol = s
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

// ArgPath formats the path element for argument i.
func ArgPath(i int) string {
	return "args[" + strconv.Itoa(i) + "]"
}

// Convenience constructors for common error patterns

// EmbeddedNUL creates the encoding error for an argument that cannot become a C string
func EmbeddedNUL(index int, arg string) *Error {
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindEncoding,
		Path:   []string{ArgPath(index)},
		Detail: fmt.Sprintf("argument %d contains an embedded NUL byte at offset %d", index, strings.IndexByte(arg, 0)),
		Value:  index,
	}
}

// ArgIndex returns the argument position carried by an encoding error.
func ArgIndex(err error) (int, bool) {
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindEncoding {
		return 0, false
	}
	i, ok := e.Value.(int)
	return i, ok
}

// LinkFailure creates the error reported when the linker returns failure.
// The diagnostics become the detail verbatim.
func LinkFailure(flavor, messages string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindLinkFailure,
		Flavor: flavor,
		Detail: strings.TrimRight(messages, "\n"),
	}
}

// Diagnostics returns the linker output carried by a link failure.
func Diagnostics(err error) (string, bool) {
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindLinkFailure {
		return "", false
	}
	return e.Detail, true
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// OutOfBounds creates an out of bounds error for foreign memory access
func OutOfBounds(phase Phase, offset, length uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("offset %d length %d outside foreign memory", offset, length),
		Value:  offset,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size uint32, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Cause:  cause,
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

// AlreadyReleased creates the error for a second release of the same record
func AlreadyReleased(symbol string) *Error {
	return &Error{
		Phase:  PhaseRelease,
		Kind:   KindReleased,
		Symbol: symbol,
		Detail: "record already released",
	}
}

// Closed creates the error for use after Close
func Closed(what string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// InvalidFlavor creates an error for an unknown flavor name or value
func InvalidFlavor(phase Phase, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidFlavor,
		Detail: fmt.Sprintf("unknown linker flavor %v", value),
		Value:  value,
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

// Call wraps a failed foreign call
func Call(phase Phase, symbol string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInstantiation,
		Symbol: symbol,
		Detail: "call failed",
		Cause:  cause,
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

// Load creates a backend loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInstantiation,
		Detail: detail,
		Cause:  cause,
	}
}

// MissingExportsError is returned when a linker module lacks entry point exports
type MissingExportsError struct {
	Module  string
	Exports []string
}

// NewMissingExportsError creates an error listing the absent export names
func NewMissingExportsError(module string, exports []string) *MissingExportsError {
	return &MissingExportsError{
		Module:  module,
		Exports: append([]string(nil), exports...),
	}
}

func (e *MissingExportsError) Error() string {
	if len(e.Exports) == 0 {
		return "[load] missing_export: no exports specified"
	}

	var b strings.Builder
	module := e.Module
	if module == "" {
		module = "module"
	}
	b.WriteString(fmt.Sprintf("%s is missing %d export(s):", module, len(e.Exports)))
	for _, name := range e.Exports {
		b.WriteString("\n  - ")
		b.WriteString(name)
	}
	return b.String()
}

// Is reports whether target matches this error type
func (e *MissingExportsError) Is(target error) bool {
	if _, ok := target.(*MissingExportsError); ok {
		return true
	}
	t, ok := target.(*Error)
	return ok && t.Phase == PhaseLoad && t.Kind == KindMissingExport
}
