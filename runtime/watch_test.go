package runtime

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_EditRestartsInterpreter(t *testing.T) {
	ctx, err := New(Config{WatchChanges: true, EnableTracebacks: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer ctx.Close()

	dir := t.TempDir()
	path := writeScript(t, dir, "mod.lua", "version = 1\nreturn {}")
	if err := ctx.AddScriptDir(dir); err != nil {
		t.Fatalf("AddScriptDir: %v", err)
	}
	if err := ctx.RequirePackage("mod"); err != nil {
		t.Fatalf("RequirePackage: %v", err)
	}

	before := ctx.State()
	if err := os.WriteFile(path, []byte("version = 2\nreturn {}"), 0o644); err != nil {
		t.Fatalf("edit module: %v", err)
	}

	if !eventually(func() bool { return ctx.State() != before }) {
		t.Fatal("edit did not trigger a restart")
	}
	if !eventually(func() bool { return ctx.Global("version").String() == "2" }) {
		t.Errorf("version = %v after reload, want 2", ctx.Global("version"))
	}
}

func TestWatch_NonLuaEditIgnored(t *testing.T) {
	ctx, err := New(Config{WatchChanges: true, EnableTracebacks: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer ctx.Close()

	dir := t.TempDir()
	if err := ctx.AddScriptDir(dir); err != nil {
		t.Fatalf("AddScriptDir: %v", err)
	}

	before := ctx.State()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	time.Sleep(300 * time.Millisecond)
	if ctx.State() != before {
		t.Error("non-Lua edit should not restart the interpreter")
	}
}

// eventually polls cond for up to three seconds.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}
