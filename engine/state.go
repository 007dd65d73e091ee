package engine

import (
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// View is a non-owning handle to a Lua state. It carries the full execution
// and marshalling surface but no teardown capability: a View is handed to
// observer hooks during lifecycle transitions and is only valid for the
// duration of that call.
type View struct {
	ls         *lua.LState
	errfn      *lua.LFunction
	tracebacks bool
}

// State is an owning Lua interpreter state. Closing it releases the
// underlying lua.LState. Exactly one owning State is live per runtime
// Context at any time.
type State struct {
	View
	mu sync.Mutex
}

// NewState creates a fresh Lua state with the standard libraries open.
//
// When enableTracebacks is set, debug.traceback is pinned at slot 1 of the
// evaluation stack for the lifetime of the state and used as the error
// handler for all protected calls that do not name one. Stack operations
// that would remove the pinned handler fail with a ProtectedSlot error.
func NewState(enableTracebacks bool) (*State, error) {
	ls := lua.NewState()

	s := &State{View: View{ls: ls, tracebacks: enableTracebacks}}
	if enableTracebacks {
		tb := ls.GetField(ls.GetGlobal("debug"), "traceback")
		if fn, ok := tb.(*lua.LFunction); ok {
			ls.Push(fn)
			s.errfn = fn
		} else {
			s.tracebacks = false
		}
	}

	debugf("created state (tracebacks=%v)", s.tracebacks)
	return s, nil
}

// Wrap creates a non-owning View over an externally supplied state.
// The wrapped state is never closed through the View. If the state was
// created with tracebacks enabled, the pinned handler at slot 1 is reused.
func Wrap(ls *lua.LState, enableTracebacks bool) *View {
	v := &View{ls: ls, tracebacks: enableTracebacks}
	if enableTracebacks && ls.GetTop() >= 1 {
		if fn, ok := ls.Get(1).(*lua.LFunction); ok {
			v.errfn = fn
		} else {
			v.tracebacks = false
		}
	}
	return v
}

// Close releases the underlying Lua state.
// The owner must ensure no View over this state outlives the call.
func (s *State) Close() {
	debugf("closing state")
	s.ls.Close()
}

// Borrow returns the non-owning view of this state, suitable for passing
// to code that must not gain teardown capability.
func (s *State) Borrow() *View {
	return &s.View
}

// Lock acquires the state's exclusive lock. Use around raw state access;
// the runtime Context serializes its own operations separately.
func (s *State) Lock() {
	s.mu.Lock()
}

// TryLock attempts to acquire the lock without blocking.
func (s *State) TryLock() bool {
	return s.mu.TryLock()
}

// Unlock releases the state's exclusive lock.
func (s *State) Unlock() {
	s.mu.Unlock()
}

// Raw exposes the wrapped lua.LState for operations this package does not
// cover. Callers are responsible for locking.
func (v *View) Raw() *lua.LState {
	return v.ls
}

// TracebacksEnabled reports whether a traceback handler is pinned at
// stack slot 1.
func (v *View) TracebacksEnabled() bool {
	return v.tracebacks
}
