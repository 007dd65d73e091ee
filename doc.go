// Package luaruntime embeds a managed Lua interpreter in Go applications.
//
// The interpreter's full configuration, bindings of host values and
// functions, module search paths, required packages and the start script,
// is recorded as it is made, so the live state can be torn down and
// rebuilt at any time without the host noticing. Combined with file
// watching this gives live reload of Lua code: edit a script, and the
// running interpreter restarts with the change applied, or keeps the old
// state if the new code fails to load.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	luaruntime/          Root package (documentation only)
//	├── runtime/         Context lifecycle manager: bindings, packages,
//	│                    observers, restart protocol
//	├── engine/          Low-level gopher-lua integration: owning State,
//	│                    borrowed View, execution and stack helpers
//	├── watcher/         fsnotify-based file monitor with name filters
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Create a context, bind host values, and run a script:
//
//	ctx, err := runtime.New(runtime.Config{WatchChanges: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	ctx.BindString("greeting", "hello")
//	ctx.AddScriptDir("./scripts")
//	if err := ctx.SetStartScript("./scripts/main.lua"); err != nil {
//	    log.Fatal(err)
//	}
//
// See the runtime package documentation for the restart protocol and
// observer hooks, and the engine package for raw interpreter access.
package luaruntime
