// Package engine provides the low-level Lua state integration.
//
// This package wraps gopher-lua to provide owning and non-owning handles to
// an interpreter state, execution with typed error translation, and a
// protected traceback slot for diagnosable script failures.
//
// # Architecture
//
// The package provides two handle types:
//
//	State - owning handle; created fresh, responsible for teardown
//	View  - non-owning handle; execution surface without Close
//
// A State embeds its View, so the full execution and marshalling surface is
// available on both. Views are what lifecycle observers receive during
// transitions: the type system guarantees a hook cannot tear down a state it
// was only lent.
//
// # Tracebacks
//
// When a state is created with tracebacks enabled, debug.traceback is pushed
// onto the evaluation stack at slot 1 and stays there for the lifetime of
// the state. DoString, DoFile, and ProtectedCall use it as the error handler
// unless the caller names another one, so script failures carry a full Lua
// stack trace in the error detail.
//
// Pop, Remove, and SetTop refuse to disturb the pinned slot and fail with a
// ProtectedSlot error instead.
//
// # Error translation
//
// gopher-lua faults are translated to the library taxonomy:
//
//	parse failure            Syntax
//	unreadable file          Resource
//	error during execution   Runtime
//	error in error handler   Handler
//
// # Thread Safety
//
// State and View are NOT safe for concurrent use. State carries an exclusive
// lock (Lock/TryLock/Unlock) for raw access; the runtime package serializes
// its own operations on top of it.
//
// Most users should use the runtime package for a simpler API. This package
// is for advanced use cases requiring direct state control.
package engine
