// Package runtime provides the high-level API for managing a Lua interpreter.
//
// # Quick Start
//
//	ctx, err := runtime.New(runtime.Config{
//	    WatchChanges:     true,
//	    EnableTracebacks: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	// Expose host values and functions
//	ctx.BindString("app_name", "demo")
//	ctx.BindFunction("host_time", func(L *lua.LState) int {
//	    L.Push(lua.LNumber(time.Now().Unix()))
//	    return 1
//	})
//
//	// Register module directories and the entry script
//	ctx.AddScriptDir("./scripts")
//	if err := ctx.SetStartScript("./scripts/main.lua"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Restarts
//
// The Context records every binding and package registration. When a
// watched .lua source changes (or Restart is called), a fresh interpreter
// state is built from those records: script and native paths are
// re-applied, recorded packages re-required, bindings re-set, observer
// init hooks run, and the start script executed. Only then does the new
// state replace the old one, which is destroyed afterwards.
//
// If any step of building the new state fails, the old state stays live
// and untouched. A broken edit to a watched script therefore never takes
// down a running interpreter.
//
// # Observers
//
// Implement Observer to participate in the restart protocol:
//
//	LuaInit       runs against the new state before it goes live; an
//	              error vetoes the restart
//	LuaFinalize   runs against the old state before destruction; errors
//	              are logged, never fatal
//	LuaRestarted  runs against the new state after the swap; errors are
//	              logged, never fatal
//
// Observers are notified in registration order for every hook.
//
// # Bindings
//
// Bind* calls install globals in the live state and record them for
// replay. A name keeps the kind it was first bound under; rebinding with
// the same kind replaces the value, rebinding with a different kind fails
// with a DuplicateBinding error. Unbind clears the record and the global.
//
// # Thread Safety
//
// All Context methods are safe for concurrent use. A single lock
// serializes every operation including the whole restart sequence, so a
// caller never observes a half-built state. Raw access through State()
// bypasses that lock; use the state's own Lock/Unlock for cross-call
// stack manipulation.
package runtime
