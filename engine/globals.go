package engine

import (
	lua "github.com/yuin/gopher-lua"
)

// SetString assigns a string to a global variable.
func (v *View) SetString(name, value string) {
	v.ls.SetGlobal(name, lua.LString(value))
}

// SetBoolean assigns a boolean to a global variable.
func (v *View) SetBoolean(name string, value bool) {
	v.ls.SetGlobal(name, lua.LBool(value))
}

// SetNumber assigns a number to a global variable.
func (v *View) SetNumber(name string, value float64) {
	v.ls.SetGlobal(name, lua.LNumber(value))
}

// SetInteger assigns an integer to a global variable. Lua numbers are
// float64, so integers above 2^53 lose precision.
func (v *View) SetInteger(name string, value int64) {
	v.ls.SetGlobal(name, lua.LNumber(value))
}

// SetFunction assigns a Go function to a global variable.
func (v *View) SetFunction(name string, fn lua.LGFunction) {
	v.ls.SetGlobal(name, v.ls.NewFunction(fn))
}

// SetObject assigns an opaque Go value to a global variable as userdata.
// When typeTag names a registered type metatable it is attached, giving
// scripts method access on the object.
func (v *View) SetObject(name string, value any, typeTag string) {
	ud := v.ls.NewUserData()
	ud.Value = value
	if typeTag != "" {
		if mt := v.ls.GetTypeMetatable(typeTag); mt != lua.LNil {
			v.ls.SetMetatable(ud, mt)
		}
	}
	v.ls.SetGlobal(name, ud)
}

// SetGlobal assigns an arbitrary Lua value to a global variable.
// No bookkeeping is done; prefer the runtime Context's bind calls for
// values that must survive a restart.
func (v *View) SetGlobal(name string, value lua.LValue) {
	v.ls.SetGlobal(name, value)
}

// RemoveGlobal assigns nil to the named global.
func (v *View) RemoveGlobal(name string) {
	v.ls.SetGlobal(name, lua.LNil)
}

// Global returns the value of the named global, or lua.LNil when unset.
func (v *View) Global(name string) lua.LValue {
	return v.ls.GetGlobal(name)
}

// NewTypeMetatable creates (or returns) the metatable registered under the
// given type tag, for use with SetObject.
func (v *View) NewTypeMetatable(typeTag string) *lua.LTable {
	return v.ls.NewTypeMetatable(typeTag)
}

// PreloadModule registers a Go loader under package.preload, making it
// available to require() without touching the search paths.
func (v *View) PreloadModule(name string, loader lua.LGFunction) {
	v.ls.PreloadModule(name, loader)
}
