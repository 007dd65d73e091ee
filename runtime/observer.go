package runtime

import (
	"fmt"

	"github.com/wippyai/lua-runtime/engine"
)

// Observer hooks interpreter lifecycle transitions. External subsystems
// implement it to rebuild their bindings when the interpreter state is
// replaced underneath them.
//
// The view passed to every hook is valid only for the duration of that
// call and must not be retained past it.
type Observer interface {
	// LuaInit is called against a freshly constructed state after
	// packages and bindings have been replayed, but before the start
	// script runs. Returning an error vetoes the transition: during a
	// restart the previous state stays live.
	LuaInit(view *engine.View) error

	// LuaFinalize is called against the outgoing state after the
	// replacement has been fully initialized, for best-effort cleanup
	// such as closing connections held inside the old state. Errors are
	// logged and never abort the swap.
	LuaFinalize(view *engine.View) error

	// LuaRestarted is called against the now-current state once the swap
	// has committed. Errors are logged and do not undo the swap.
	LuaRestarted(view *engine.View) error
}

// callHook invokes an observer hook, converting a panic into an error so
// a misbehaving observer cannot corrupt an in-progress transition.
func callHook(hook func(*engine.View) error, view *engine.View) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	return hook(view)
}
