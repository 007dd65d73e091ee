package engine

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/lua-runtime/errors"
)

// translate maps a gopher-lua error to the library taxonomy.
// Parse failures become Syntax and unreadable files Resource. Faults
// raised during execution become Runtime whether or not a handler
// processed them (lua.ApiErrorError means the handler ran and returned);
// handlerFault flags the one case where the handler itself raised, which
// becomes Handler.
func translate(what string, err error, handlerFault bool) error {
	if err == nil {
		return nil
	}
	if apiErr, ok := err.(*lua.ApiError); ok {
		msg := lua.LVAsString(apiErr.Object)
		if apiErr.StackTrace != "" {
			msg = msg + "\n" + apiErr.StackTrace
		}
		if handlerFault {
			return errors.Handler(what, msg)
		}
		switch apiErr.Type {
		case lua.ApiErrorSyntax:
			return errors.Syntax(what, msg)
		case lua.ApiErrorFile:
			return errors.Resource(what, msg, nil)
		default: // ApiErrorRun, ApiErrorError, ApiErrorPanic
			return errors.Runtime(what, msg)
		}
	}
	return errors.Resource(what, err.Error(), err)
}

// pcall invokes the function below nargs arguments on the stack. The
// error handler is routed through a wrapper that records whether it was
// entered and whether it returned, so a fault inside the handler can be
// told apart from the ordinary fault it was processing.
func (v *View) pcall(what string, nargs, nresults int, errfn *lua.LFunction) error {
	if errfn == nil {
		return translate(what, v.ls.PCall(nargs, nresults, nil), false)
	}

	var entered, returned bool
	wrapper := v.ls.NewFunction(func(L *lua.LState) int {
		entered = true
		L.Push(errfn)
		L.Push(L.Get(1))
		L.Call(1, 1)
		returned = true
		return 1
	})
	err := v.ls.PCall(nargs, nresults, wrapper)
	return translate(what, err, entered && !returned)
}

// DoString compiles and runs a chunk of Lua source. Results are discarded;
// use LoadString plus ProtectedCall to retrieve values from the stack.
func (v *View) DoString(source string) error {
	fn, err := v.ls.LoadString(source)
	if err != nil {
		return translate("do_string", err, false)
	}
	base := v.ls.GetTop()
	v.ls.Push(fn)
	if err := v.pcall("do_string", 0, lua.MultRet, v.errfn); err != nil {
		return err
	}
	v.ls.SetTop(base)
	return nil
}

// DoFile loads and runs a Lua file. Results are discarded.
func (v *View) DoFile(filename string) error {
	fn, err := v.ls.LoadFile(filename)
	if err != nil {
		return translate(filename, err, false)
	}
	base := v.ls.GetTop()
	v.ls.Push(fn)
	if err := v.pcall(filename, 0, lua.MultRet, v.errfn); err != nil {
		return err
	}
	v.ls.SetTop(base)
	return nil
}

// LoadString compiles a chunk and leaves it as a function on top of the
// stack without running it.
func (v *View) LoadString(source string) error {
	fn, err := v.ls.LoadString(source)
	if err != nil {
		return translate("load_string", err, false)
	}
	v.ls.Push(fn)
	return nil
}

// ProtectedCall calls the function at the top of the stack (below nargs
// arguments) with runtime faults translated into typed errors.
//
// errfunc is the stack index of an error-handling function, or 0 to use
// the pinned traceback handler when tracebacks are enabled.
func (v *View) ProtectedCall(nargs, nresults, errfunc int) error {
	errfn := v.errfn
	if errfunc != 0 {
		fn, ok := v.ls.Get(errfunc).(*lua.LFunction)
		if !ok {
			return errors.InvalidInput(errors.PhaseExec, "errfunc index does not hold a function")
		}
		errfn = fn
	}
	return v.pcall("pcall", nargs, nresults, errfn)
}
