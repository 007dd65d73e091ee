package engine

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/lua-runtime/errors"
)

// Push places a value on top of the stack.
func (v *View) Push(value lua.LValue) {
	v.ls.Push(value)
}

// PushString places a string on top of the stack.
func (v *View) PushString(value string) {
	v.ls.Push(lua.LString(value))
}

// PushNumber places a number on top of the stack.
func (v *View) PushNumber(value float64) {
	v.ls.Push(lua.LNumber(value))
}

// PushInteger places an integer on top of the stack.
func (v *View) PushInteger(value int64) {
	v.ls.Push(lua.LNumber(value))
}

// PushBoolean places a boolean on top of the stack.
func (v *View) PushBoolean(value bool) {
	v.ls.Push(lua.LBool(value))
}

// PushNil places nil on top of the stack.
func (v *View) PushNil() {
	v.ls.Push(lua.LNil)
}

// PushFunction places a Go function on top of the stack.
func (v *View) PushFunction(fn lua.LGFunction) {
	v.ls.Push(v.ls.NewFunction(fn))
}

// Pop removes n values from the top of the stack. When tracebacks are
// enabled the pinned handler at slot 1 cannot be popped.
func (v *View) Pop(n int) error {
	if v.tracebacks && n >= v.ls.GetTop() {
		return errors.ProtectedSlot("pop")
	}
	v.ls.Pop(n)
	return nil
}

// Remove removes the value at the given stack index. When tracebacks are
// enabled the pinned handler at slot 1 cannot be removed.
func (v *View) Remove(index int) error {
	if v.tracebacks && (index == 1 || index == -v.ls.GetTop()) {
		return errors.ProtectedSlot("remove")
	}
	v.ls.Remove(index)
	return nil
}

// SetTop truncates the stack to n values. When tracebacks are enabled the
// stack cannot be truncated below the pinned handler.
func (v *View) SetTop(n int) error {
	if v.tracebacks && n < 1 {
		return errors.ProtectedSlot("set_top")
	}
	v.ls.SetTop(n)
	return nil
}

// Top returns the number of values on the stack.
func (v *View) Top() int {
	return v.ls.GetTop()
}

// Get returns the value at the given stack index without removing it.
func (v *View) Get(index int) lua.LValue {
	return v.ls.Get(index)
}

// NewTable creates an empty table.
func (v *View) NewTable() *lua.LTable {
	return v.ls.NewTable()
}

// CreateTable creates a table preallocated for acap array and hcap hash
// elements.
func (v *View) CreateTable(acap, hcap int) *lua.LTable {
	return v.ls.CreateTable(acap, hcap)
}

// SetField does obj[key] = value, invoking metamethods.
func (v *View) SetField(obj lua.LValue, key string, value lua.LValue) {
	v.ls.SetField(obj, key, value)
}

// GetField returns obj[key], invoking metamethods.
func (v *View) GetField(obj lua.LValue, key string) lua.LValue {
	return v.ls.GetField(obj, key)
}

// SetTable does obj[key] = value, invoking metamethods.
func (v *View) SetTable(obj, key, value lua.LValue) {
	v.ls.SetTable(obj, key, value)
}

// GetTable returns obj[key], invoking metamethods.
func (v *View) GetTable(obj, key lua.LValue) lua.LValue {
	return v.ls.GetTable(obj, key)
}

// RawSet does tbl[key] = value without invoking metamethods.
func (v *View) RawSet(tbl *lua.LTable, key, value lua.LValue) {
	v.ls.RawSet(tbl, key, value)
}

// RawGet returns tbl[key] without invoking metamethods.
func (v *View) RawGet(tbl *lua.LTable, key lua.LValue) lua.LValue {
	return v.ls.RawGet(tbl, key)
}

// RawSetInt does tbl[n] = value without invoking metamethods.
func (v *View) RawSetInt(tbl *lua.LTable, n int, value lua.LValue) {
	v.ls.RawSetInt(tbl, n, value)
}

// RawGetInt returns tbl[n] without invoking metamethods.
func (v *View) RawGetInt(tbl *lua.LTable, n int) lua.LValue {
	return v.ls.RawGetInt(tbl, n)
}

// ObjLen returns the length of the given value.
func (v *View) ObjLen(value lua.LValue) int {
	return v.ls.ObjLen(value)
}

// ToString converts the value at the given stack index to a string.
func (v *View) ToString(index int) string {
	return lua.LVAsString(v.ls.Get(index))
}

// ToNumber converts the value at the given stack index to a number.
func (v *View) ToNumber(index int) float64 {
	return float64(lua.LVAsNumber(v.ls.Get(index)))
}

// ToInteger converts the value at the given stack index to an integer.
func (v *View) ToInteger(index int) int64 {
	return int64(lua.LVAsNumber(v.ls.Get(index)))
}

// ToBoolean converts the value at the given stack index to a boolean
// following Lua truthiness (only nil and false are false).
func (v *View) ToBoolean(index int) bool {
	return !lua.LVIsFalse(v.ls.Get(index))
}

// IsNil reports whether the value at the given index is nil.
func (v *View) IsNil(index int) bool {
	return v.ls.Get(index) == lua.LNil
}

// IsBoolean reports whether the value at the given index is a boolean.
func (v *View) IsBoolean(index int) bool {
	return v.ls.Get(index).Type() == lua.LTBool
}

// IsNumber reports whether the value at the given index is a number.
func (v *View) IsNumber(index int) bool {
	return v.ls.Get(index).Type() == lua.LTNumber
}

// IsString reports whether the value at the given index is a string.
func (v *View) IsString(index int) bool {
	return v.ls.Get(index).Type() == lua.LTString
}

// IsTable reports whether the value at the given index is a table.
func (v *View) IsTable(index int) bool {
	return v.ls.Get(index).Type() == lua.LTTable
}

// IsFunction reports whether the value at the given index is a function.
func (v *View) IsFunction(index int) bool {
	return v.ls.Get(index).Type() == lua.LTFunction
}

// IsUserData reports whether the value at the given index is userdata.
func (v *View) IsUserData(index int) bool {
	return v.ls.Get(index).Type() == lua.LTUserData
}
