package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

// collectingListener records delivered paths for inspection.
type collectingListener struct {
	mu    sync.Mutex
	paths []string
}

func (c *collectingListener) FileChanged(path string, op fsnotify.Op) {
	c.mu.Lock()
	c.paths = append(c.paths, path)
	c.mu.Unlock()
}

func (c *collectingListener) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.paths))
	copy(out, c.paths)
	return out
}

// waitFor polls until cond returns true or the deadline passes.
func waitFor(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestMonitor_DirChange(t *testing.T) {
	m, err := NewMonitor()
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	defer m.Close()

	listener := &collectingListener{}
	m.AddListener(listener)

	dir := t.TempDir()
	if err := m.WatchDir(dir); err != nil {
		t.Fatalf("WatchDir: %v", err)
	}

	path := filepath.Join(dir, "script.lua")
	if err := os.WriteFile(path, []byte("x = 1"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if !waitFor(t, func() bool { return len(listener.snapshot()) > 0 }) {
		t.Fatal("no event delivered for created file")
	}
	if got := listener.snapshot()[0]; got != path {
		t.Errorf("delivered path = %s, want %s", got, path)
	}
}

func TestMonitor_Filters(t *testing.T) {
	m, err := NewMonitor()
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	defer m.Close()

	if err := m.AddFilter(`^[^.].*\.lua$`); err != nil {
		t.Fatalf("AddFilter: %v", err)
	}

	listener := &collectingListener{}
	m.AddListener(listener)

	dir := t.TempDir()
	if err := m.WatchDir(dir); err != nil {
		t.Fatalf("WatchDir: %v", err)
	}

	// Filtered out: wrong extension and hidden file.
	for _, name := range []string{"notes.txt", ".hidden.lua"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	// Matching name.
	match := filepath.Join(dir, "mod.lua")
	if err := os.WriteFile(match, []byte("x"), 0o644); err != nil {
		t.Fatalf("write mod.lua: %v", err)
	}

	if !waitFor(t, func() bool { return len(listener.snapshot()) > 0 }) {
		t.Fatal("no event delivered for matching file")
	}
	for _, p := range listener.snapshot() {
		if p != match {
			t.Errorf("filtered path %s was delivered", p)
		}
	}
}

func TestMonitor_BadFilter(t *testing.T) {
	m, err := NewMonitor()
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	defer m.Close()

	if err := m.AddFilter("("); err == nil {
		t.Error("expected error for invalid regexp")
	}
}

func TestMonitor_RemoveListener(t *testing.T) {
	m, err := NewMonitor()
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	defer m.Close()

	listener := &collectingListener{}
	m.AddListener(listener)
	m.RemoveListener(listener)

	dir := t.TempDir()
	if err := m.WatchDir(dir); err != nil {
		t.Fatalf("WatchDir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.lua"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if got := listener.snapshot(); len(got) != 0 {
		t.Errorf("removed listener received %v", got)
	}
}

func TestMonitor_CloseIdempotent(t *testing.T) {
	m, err := NewMonitor()
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestMonitor_WatchMissingPath(t *testing.T) {
	m, err := NewMonitor()
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	defer m.Close()

	if err := m.WatchDir(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for missing directory")
	}
}
