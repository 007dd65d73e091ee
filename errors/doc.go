// Package errors provides structured error types for the lua-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the offending name (a binding, package, or
// file path), a detail message, and a cause chain.
//
// Use the convenience constructors for the library's taxonomy:
//
//	err := errors.DuplicateBinding("config", "string")
//	err := errors.Syntax("init.lua", "unexpected symbol near ')'")
//	err := errors.Runtime("do_string", "attempt to index a nil value")
//
// Matching is by Phase and Kind, so sentinel comparisons work with errors.Is:
//
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindSyntax}) {
//	    // parse failure
//	}
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
