package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"

	liberrors "github.com/wippyai/lua-runtime/errors"
)

func TestNewState_Tracebacks(t *testing.T) {
	s, err := NewState(true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	if !s.TracebacksEnabled() {
		t.Fatal("tracebacks should be enabled")
	}
	if s.Top() != 1 {
		t.Fatalf("Top = %d, want 1 (pinned handler)", s.Top())
	}
	if !s.IsFunction(1) {
		t.Fatal("slot 1 should hold the traceback function")
	}
}

func TestNewState_NoTracebacks(t *testing.T) {
	s, err := NewState(false)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	if s.TracebacksEnabled() {
		t.Fatal("tracebacks should be disabled")
	}
	if s.Top() != 0 {
		t.Fatalf("Top = %d, want 0", s.Top())
	}
}

func TestDoString(t *testing.T) {
	s, err := NewState(true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	if err := s.DoString("x = 40 + 2"); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if got := lua.LVAsNumber(s.Global("x")); got != 42 {
		t.Errorf("x = %v, want 42", got)
	}
	if top := s.Top(); top != 1 {
		t.Errorf("Top = %d after DoString, want 1", top)
	}
}

func TestDoString_SyntaxError(t *testing.T) {
	s, err := NewState(true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	err = s.DoString("if then end")
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if !errors.Is(err, &liberrors.Error{Phase: liberrors.PhaseLoad, Kind: liberrors.KindSyntax}) {
		t.Errorf("err = %v, want syntax error", err)
	}
}

func TestDoString_RuntimeError(t *testing.T) {
	s, err := NewState(true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	err = s.DoString(`error("boom")`)
	if err == nil {
		t.Fatal("expected runtime error")
	}
	if !errors.Is(err, &liberrors.Error{Phase: liberrors.PhaseExec, Kind: liberrors.KindRuntime}) {
		t.Errorf("err = %v, want runtime error", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v, should carry the raised message", err)
	}
	// The pinned handler processed the fault; that must not relabel it.
	if !strings.Contains(err.Error(), "traceback") {
		t.Errorf("err = %v, should carry the handler's traceback", err)
	}
}

func TestDoFile(t *testing.T) {
	s, err := NewState(true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	path := filepath.Join(t.TempDir(), "init.lua")
	if err := os.WriteFile(path, []byte("loaded = true"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	if err := s.DoFile(path); err != nil {
		t.Fatalf("DoFile: %v", err)
	}
	if s.Global("loaded") != lua.LTrue {
		t.Error("script did not run")
	}
}

func TestDoFile_Missing(t *testing.T) {
	s, err := NewState(true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	err = s.DoFile(filepath.Join(t.TempDir(), "missing.lua"))
	if err == nil {
		t.Fatal("expected resource error")
	}
	if !errors.Is(err, &liberrors.Error{Phase: liberrors.PhaseLoad, Kind: liberrors.KindResource}) {
		t.Errorf("err = %v, want resource error", err)
	}
}

func TestProtectedSlot(t *testing.T) {
	s, err := NewState(true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	target := &liberrors.Error{Phase: liberrors.PhaseStack, Kind: liberrors.KindProtectedSlot}

	if err := s.Pop(1); !errors.Is(err, target) {
		t.Errorf("Pop(1) on pinned slot = %v, want protected slot error", err)
	}
	if err := s.Remove(1); !errors.Is(err, target) {
		t.Errorf("Remove(1) = %v, want protected slot error", err)
	}
	if err := s.SetTop(0); !errors.Is(err, target) {
		t.Errorf("SetTop(0) = %v, want protected slot error", err)
	}

	// Values above the handler come and go freely.
	s.PushString("scratch")
	if err := s.Pop(1); err != nil {
		t.Errorf("Pop above pinned slot: %v", err)
	}
	if s.Top() != 1 {
		t.Errorf("Top = %d, want 1", s.Top())
	}
}

func TestPop_NoTracebacks(t *testing.T) {
	s, err := NewState(false)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	s.PushNumber(1)
	if err := s.Pop(1); err != nil {
		t.Errorf("Pop without tracebacks: %v", err)
	}
	if err := s.SetTop(0); err != nil {
		t.Errorf("SetTop(0) without tracebacks: %v", err)
	}
}

func TestLoadStringProtectedCall(t *testing.T) {
	s, err := NewState(true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	if err := s.LoadString("return 1 + 2"); err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	if !s.IsFunction(-1) {
		t.Fatal("LoadString should leave a function on the stack")
	}

	if err := s.ProtectedCall(0, 1, 0); err != nil {
		t.Fatalf("ProtectedCall: %v", err)
	}
	if got := s.ToNumber(-1); got != 3 {
		t.Errorf("result = %v, want 3", got)
	}
	if err := s.Pop(1); err != nil {
		t.Fatalf("Pop result: %v", err)
	}
}

func TestProtectedCall_RuntimeError(t *testing.T) {
	s, err := NewState(true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	if err := s.LoadString(`error("mid-call")`); err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	err = s.ProtectedCall(0, 0, 0)
	if !errors.Is(err, &liberrors.Error{Phase: liberrors.PhaseExec, Kind: liberrors.KindRuntime}) {
		t.Errorf("err = %v, want runtime error", err)
	}
}

func TestProtectedCall_CustomHandler(t *testing.T) {
	s, err := NewState(true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	if err := s.DoString(`function tag(e) return "tagged: " .. e end`); err != nil {
		t.Fatalf("define handler: %v", err)
	}
	s.Push(s.Global("tag"))
	handlerIdx := s.Top()

	if err := s.LoadString(`error("boom")`); err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	err = s.ProtectedCall(0, 0, handlerIdx)
	if !errors.Is(err, &liberrors.Error{Phase: liberrors.PhaseExec, Kind: liberrors.KindRuntime}) {
		t.Errorf("err = %v, want runtime error from a handled fault", err)
	}
	if !strings.Contains(err.Error(), "tagged: ") {
		t.Errorf("err = %v, should carry the handler's result", err)
	}
}

func TestProtectedCall_FaultingHandler(t *testing.T) {
	s, err := NewState(true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	if err := s.DoString(`function broken() error("handler fault") end`); err != nil {
		t.Fatalf("define handler: %v", err)
	}
	s.Push(s.Global("broken"))
	handlerIdx := s.Top()

	if err := s.LoadString(`error("boom")`); err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	err = s.ProtectedCall(0, 0, handlerIdx)
	if !errors.Is(err, &liberrors.Error{Phase: liberrors.PhaseExec, Kind: liberrors.KindHandler}) {
		t.Errorf("err = %v, want handler error when the handler itself raises", err)
	}
	if !strings.Contains(err.Error(), "handler fault") {
		t.Errorf("err = %v, should carry the handler's own message", err)
	}
}

func TestGlobals(t *testing.T) {
	s, err := NewState(true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	s.SetString("str", "hello")
	s.SetBoolean("flag", true)
	s.SetNumber("num", 2.5)
	s.SetInteger("count", 7)
	s.SetFunction("double", func(L *lua.LState) int {
		L.Push(lua.LNumber(L.CheckNumber(1) * 2))
		return 1
	})

	if err := s.DoString(`ok = str == "hello" and flag and num == 2.5 and count == 7 and double(21) == 42`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if s.Global("ok") != lua.LTrue {
		t.Error("globals not visible from Lua")
	}

	s.RemoveGlobal("str")
	if s.Global("str") != lua.LNil {
		t.Error("RemoveGlobal did not clear the global")
	}
}

func TestSetObject(t *testing.T) {
	s, err := NewState(true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	type payload struct{ n int }

	mt := s.NewTypeMetatable("payload")
	s.SetField(mt, "__index", s.NewTable())
	s.SetField(s.GetField(mt, "__index"), "value", s.Raw().NewFunction(func(L *lua.LState) int {
		p := L.CheckUserData(1).Value.(*payload)
		L.Push(lua.LNumber(p.n))
		return 1
	}))

	s.SetObject("obj", &payload{n: 9}, "payload")
	if err := s.DoString("v = obj:value()"); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if got := lua.LVAsNumber(s.Global("v")); got != 9 {
		t.Errorf("v = %v, want 9", got)
	}

	ud, ok := s.Global("obj").(*lua.LUserData)
	if !ok {
		t.Fatal("obj should be userdata")
	}
	if p := ud.Value.(*payload); p.n != 9 {
		t.Errorf("userdata holds %v, want n=9", p)
	}
}

func TestWrapReusesHandler(t *testing.T) {
	s, err := NewState(true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	v := Wrap(s.Raw(), true)
	if !v.TracebacksEnabled() {
		t.Fatal("wrapped view should see the pinned handler")
	}
	if err := v.DoString("wrapped = 1"); err != nil {
		t.Fatalf("DoString through view: %v", err)
	}
	if s.Global("wrapped") == lua.LNil {
		t.Error("view and state should share the interpreter")
	}
}

func TestTableHelpers(t *testing.T) {
	s, err := NewState(false)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	tbl := s.NewTable()
	s.RawSet(tbl, lua.LString("k"), lua.LString("v"))
	s.RawSetInt(tbl, 1, lua.LNumber(10))
	s.RawSetInt(tbl, 2, lua.LNumber(20))

	if got := s.RawGet(tbl, lua.LString("k")); got != lua.LString("v") {
		t.Errorf("RawGet = %v, want v", got)
	}
	if got := s.RawGetInt(tbl, 2); got != lua.LNumber(20) {
		t.Errorf("RawGetInt(2) = %v, want 20", got)
	}
	if n := s.ObjLen(tbl); n != 2 {
		t.Errorf("ObjLen = %d, want 2", n)
	}
}

func TestPreloadModule(t *testing.T) {
	s, err := NewState(false)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	defer s.Close()

	s.PreloadModule("answers", func(L *lua.LState) int {
		mod := L.NewTable()
		L.SetField(mod, "ultimate", lua.LNumber(42))
		L.Push(mod)
		return 1
	})

	if err := s.DoString(`a = require("answers").ultimate`); err != nil {
		t.Fatalf("require preloaded module: %v", err)
	}
	if got := lua.LVAsNumber(s.Global("a")); got != 42 {
		t.Errorf("a = %v, want 42", got)
	}
}
