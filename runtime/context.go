package runtime

import (
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wippyai/lua-runtime/engine"
	"github.com/wippyai/lua-runtime/errors"
	"github.com/wippyai/lua-runtime/watcher"
)

// luaFileFilter matches visible files with a .lua suffix; changes to
// anything else in a watched directory do not trigger a restart.
const luaFileFilter = `^[^.].*\.lua$`

// Config holds construction options for a Context.
type Config struct {
	// WatchChanges restarts the interpreter automatically when a .lua
	// file changes in any added script or native directory.
	WatchChanges bool

	// EnableTracebacks pins debug.traceback at the bottom of every
	// state's stack and uses it as the default pcall error handler.
	EnableTracebacks bool
}

// Context owns a live Lua interpreter state and transparently rebuilds it
// when watched sources change. Bindings and package registrations made
// through the Context are recorded and replayed into every fresh state, so
// a restart is invisible to the host apart from observer notifications.
//
// All public operations serialize on one exclusive lock; a restart holds
// it for the entire construction-to-swap sequence, so concurrent callers
// always observe either the fully-old or fully-new state.
type Context struct {
	mu          sync.Mutex
	state       *engine.State
	bindings    bindingSet
	packages    packageSet
	observers   []Observer
	monitor     *watcher.Monitor
	startScript string
	tracebacks  bool
	closed      bool
}

// New constructs a Context with a freshly initialized live state.
// A construction failure leaves nothing behind: no state, no watches.
func New(cfg Config) (*Context, error) {
	c := &Context{
		bindings:   newBindingSet(),
		tracebacks: cfg.EnableTracebacks,
	}

	if cfg.WatchChanges {
		m, err := watcher.NewMonitor()
		if err != nil {
			return nil, err
		}
		if err := m.AddFilter(luaFileFilter); err != nil {
			m.Close()
			return nil, err
		}
		m.AddListener(c)
		c.monitor = m
	}

	st, err := c.newState()
	if err != nil {
		if c.monitor != nil {
			c.monitor.Close()
		}
		return nil, err
	}
	c.state = st
	return c, nil
}

// newState builds and fully initializes a fresh owning state: replay the
// package registry, replay the binding registry, run observer init hooks
// against a borrowed view, then run the start script. Any failure tears
// the new state down and returns without side effects on the live one.
func (c *Context) newState() (*engine.State, error) {
	st, err := engine.NewState(c.tracebacks)
	if err != nil {
		return nil, err
	}

	if err := c.packages.replay(st.Borrow()); err != nil {
		st.Close()
		return nil, err
	}
	c.bindings.replay(st.Borrow())

	view := engine.Wrap(st.Raw(), c.tracebacks)
	for _, obs := range c.observers {
		if err := callHook(obs.LuaInit, view); err != nil {
			st.Close()
			return nil, errors.ObserverInit(err)
		}
	}

	if c.startScript != "" {
		if err := runStartScript(st.Borrow(), c.startScript); err != nil {
			st.Close()
			return nil, err
		}
	}
	return st, nil
}

// runStartScript executes the start script by path when it resolves to a
// readable file, otherwise as a required module name.
func runStartScript(v *engine.View, script string) error {
	if f, err := os.Open(script); err == nil {
		f.Close()
		return v.DoFile(script)
	}
	return requirePackage(v, script)
}

// Restart replaces the live state with a freshly initialized one.
//
// The new state is fully constructed first; if anything fails, including
// an observer init veto, the previous state is left untouched and remains
// in use, and the error is returned. Only after successful construction
// are observers finalized against the old state, the handle swapped, the
// old state destroyed, and observers notified of the restart. Finalize and
// restarted failures are logged per observer and never abort the swap.
func (c *Context) Restart() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Closed(errors.PhaseRestart)
	}
	return c.restartLocked()
}

func (c *Context) restartLocked() error {
	st, err := c.newState()
	if err != nil {
		return err
	}

	old := c.state
	for _, obs := range c.observers {
		if err := callHook(obs.LuaFinalize, old.Borrow()); err != nil {
			Logger().Warn("observer finalize failed", zap.Error(err))
		}
	}

	c.state = st
	old.Close()

	for _, obs := range c.observers {
		if err := callHook(obs.LuaRestarted, c.state.Borrow()); err != nil {
			Logger().Warn("observer restarted hook failed", zap.Error(err))
		}
	}
	return nil
}

// FileChanged implements watcher.Listener. A change to a watched Lua
// source restarts the interpreter; a failed restart keeps the previous
// state live and is logged rather than propagated, since there is no
// caller to report to.
func (c *Context) FileChanged(path string, op fsnotify.Op) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	Logger().Info("source changed, restarting", zap.String("path", path), zap.Stringer("op", op))
	if err := c.restartLocked(); err != nil {
		Logger().Error("restart failed, keeping old state", zap.String("path", path), zap.Error(err))
	}
}

// SetStartScript stores the script run at the end of every state
// initialization and executes it immediately against the live state.
// If the argument names a readable file it runs via DoFile, otherwise it
// is treated as a module name for require. Call after the add and bind
// calls whose results the script depends on.
func (c *Context) SetStartScript(script string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Closed(errors.PhaseExec)
	}
	c.startScript = script
	if script == "" {
		return nil
	}
	return runStartScript(c.state.Borrow(), script)
}

// Close finalizes observers against the live state, destroys it, and
// stops the file monitor. The Context is unusable afterwards.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	for _, obs := range c.observers {
		if err := callHook(obs.LuaFinalize, c.state.Borrow()); err != nil {
			Logger().Warn("observer finalize failed on close", zap.Error(err))
		}
	}
	c.state.Close()

	if c.monitor != nil {
		c.monitor.RemoveListener(c)
		return c.monitor.Close()
	}
	return nil
}

// AddObserver registers an observer. Notification order for every hook is
// registration order. The Context holds a non-owning reference; remove
// the observer before destroying it.
func (c *Context) AddObserver(obs Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, obs)
}

// RemoveObserver unregisters a previously added observer.
func (c *Context) RemoveObserver(obs Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, o := range c.observers {
		if o == obs {
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			return
		}
	}
}

// AddScriptDir appends a directory to the Lua module search path, applies
// it to the live state, and watches it for changes when watching is
// enabled. Duplicate additions are permitted and preserved.
func (c *Context) AddScriptDir(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Closed(errors.PhaseLoad)
	}
	if err := appendScriptPath(c.state.Borrow(), path); err != nil {
		return err
	}
	c.packages.scriptDirs = append(c.packages.scriptDirs, path)
	if c.monitor != nil {
		if err := c.monitor.WatchDir(path); err != nil {
			Logger().Warn("cannot watch script dir", zap.String("path", path), zap.Error(err))
		}
	}
	return nil
}

// AddNativeDir appends a directory to the native-extension search path
// (package.cpath) and watches it when watching is enabled.
func (c *Context) AddNativeDir(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Closed(errors.PhaseLoad)
	}
	if err := appendNativePath(c.state.Borrow(), path); err != nil {
		return err
	}
	c.packages.nativeDirs = append(c.packages.nativeDirs, path)
	if c.monitor != nil {
		if err := c.monitor.WatchDir(path); err != nil {
			Logger().Warn("cannot watch native dir", zap.String("path", path), zap.Error(err))
		}
	}
	return nil
}

// RequirePackage loads a package into the live state and records it for
// replay on every restart. Requiring an already recorded name is a no-op.
func (c *Context) RequirePackage(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Closed(errors.PhaseLoad)
	}
	if c.packages.hasPackage(name) {
		return nil
	}
	if err := requirePackage(c.state.Borrow(), name); err != nil {
		return err
	}
	c.packages.packages = append(c.packages.packages, name)
	return nil
}

// Preload registers a Go loader under package.preload in the live state
// and records it for replay. Registering an existing name replaces its
// loader.
func (c *Context) Preload(name string, loader lua.LGFunction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Closed(errors.PhaseLoad)
	}
	c.packages.putPreload(name, loader)
	c.state.PreloadModule(name, loader)
	return nil
}

// WatchDir adds a directory to the watch set. No-op when watching is
// disabled.
func (c *Context) WatchDir(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.monitor == nil {
		return nil
	}
	return c.monitor.WatchDir(path)
}

// WatchFile adds a single file to the watch set. No-op when watching is
// disabled.
func (c *Context) WatchFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.monitor == nil {
		return nil
	}
	return c.monitor.WatchFile(path)
}

// BindString binds a string into the global namespace. The value is set
// in the live state immediately and replayed after every restart.
func (c *Context) BindString(name, value string) error {
	return c.bind(name, KindString, value, "")
}

// BindBoolean binds a boolean into the global namespace.
func (c *Context) BindBoolean(name string, value bool) error {
	return c.bind(name, KindBoolean, value, "")
}

// BindNumber binds a number into the global namespace.
func (c *Context) BindNumber(name string, value float64) error {
	return c.bind(name, KindNumber, value, "")
}

// BindInteger binds an integer into the global namespace.
func (c *Context) BindInteger(name string, value int64) error {
	return c.bind(name, KindInteger, value, "")
}

// BindFunction binds a Go function into the global namespace.
func (c *Context) BindFunction(name string, fn lua.LGFunction) error {
	return c.bind(name, KindFunction, fn, "")
}

// BindObject binds an opaque Go value into the global namespace as
// userdata tagged with the given type name.
func (c *Context) BindObject(name string, value any, typeTag string) error {
	return c.bind(name, KindObject, value, typeTag)
}

// bind records the entry and applies it to the live state. A name bound
// under a different kind is rejected with a DuplicateBinding error and
// the existing binding is left intact.
func (c *Context) bind(name string, kind Kind, value any, typeTag string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Closed(errors.PhaseBind)
	}
	if err := c.bindings.put(name, kind, value, typeTag); err != nil {
		return err
	}
	c.bindings.entries[name].apply(c.state.Borrow())
	return nil
}

// Unbind removes a binding of any kind and nils the corresponding global
// in the live state. Unbinding an unknown name is a no-op.
func (c *Context) Unbind(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.bindings.remove(name)
	c.state.RemoveGlobal(name)
}

// DoString runs a chunk of Lua source against the live state.
func (c *Context) DoString(source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Closed(errors.PhaseExec)
	}
	return c.state.DoString(source)
}

// DoFile runs a Lua file against the live state.
func (c *Context) DoFile(filename string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Closed(errors.PhaseExec)
	}
	return c.state.DoFile(filename)
}

// LoadString compiles a chunk and leaves it on the live state's stack.
func (c *Context) LoadString(source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Closed(errors.PhaseLoad)
	}
	return c.state.LoadString(source)
}

// ProtectedCall calls the function on top of the live state's stack.
func (c *Context) ProtectedCall(nargs, nresults, errfunc int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Closed(errors.PhaseExec)
	}
	return c.state.ProtectedCall(nargs, nresults, errfunc)
}

// Global returns the value of a global in the live state.
func (c *Context) Global(name string) lua.LValue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Global(name)
}

// State returns the live owning state for raw access. The reference is
// invalidated by the next restart; hold the Context's operations off (or
// the state's own lock) while using it.
func (c *Context) State() *engine.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
