package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseBind    Phase = "bind"    // binding registry mutation
	PhaseLoad    Phase = "load"    // chunk compilation, package loading
	PhaseExec    Phase = "exec"    // script execution
	PhaseStack   Phase = "stack"   // raw stack manipulation
	PhaseRestart Phase = "restart" // state construction and swap
	PhaseWatch   Phase = "watch"   // file watch registration
)

// Kind categorizes the error
type Kind string

const (
	KindDuplicateBinding Kind = "duplicate_binding"
	KindSyntax           Kind = "syntax"
	KindResource         Kind = "resource"
	KindRuntime          Kind = "runtime"
	KindHandler          Kind = "handler"
	KindProtectedSlot    Kind = "protected_slot"
	KindObserverInit     Kind = "observer_init"
	KindInvalidInput     Kind = "invalid_input"
	KindClosed           Kind = "closed"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Name   string // binding name, package name, or file path
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Name != "" {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprintf("%q", e.Name))
	}

	if e.Detail != "" {
		b.WriteString(": ")
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

// Convenience constructors for the library's error taxonomy

// DuplicateBinding reports a global name already bound under a different kind.
// existingKind names the kind currently holding the name.
func DuplicateBinding(name, existingKind string) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindDuplicateBinding,
		Name:   name,
		Detail: fmt.Sprintf("%s entry already exists", existingKind),
	}
}

// Syntax reports a chunk that failed to parse
func Syntax(what, msg string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindSyntax,
		Name:   what,
		Detail: msg,
	}
}

// Resource reports an unreadable file or an allocation failure
func Resource(what, detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindResource,
		Name:   what,
		Detail: detail,
		Cause:  cause,
	}
}

// Runtime reports a script that raised during execution
func Runtime(what, msg string) *Error {
	return &Error{
		Phase:  PhaseExec,
		Kind:   KindRuntime,
		Name:   what,
		Detail: msg,
	}
}

// Handler reports a fault inside the error-handling function itself
func Handler(what, msg string) *Error {
	return &Error{
		Phase:  PhaseExec,
		Kind:   KindHandler,
		Name:   what,
		Detail: msg,
	}
}

// ProtectedSlot reports an attempt to disturb the reserved traceback slot
func ProtectedSlot(op string) *Error {
	return &Error{
		Phase:  PhaseStack,
		Kind:   KindProtectedSlot,
		Name:   op,
		Detail: "operation would remove the traceback function",
	}
}

// ObserverInit reports an init hook that vetoed a (re)initialization
func ObserverInit(cause error) *Error {
	return &Error{
		Phase:  PhaseRestart,
		Kind:   KindObserverInit,
		Detail: "observer rejected new state",
		Cause:  cause,
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

// Closed reports use of a context after Close
func Closed(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: "context is closed",
	}
}

// Watch wraps a file-watch registration failure
func Watch(path string, cause error) *Error {
	return &Error{
		Phase: PhaseWatch,
		Kind:  KindResource,
		Name:  path,
		Cause: cause,
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
