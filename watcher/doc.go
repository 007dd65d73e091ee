// Package watcher provides file-alteration monitoring for script reloads.
//
// Monitor wraps fsnotify and fans change events out to registered
// listeners. The runtime package registers every script directory it is
// told about and restarts the interpreter when a matching file changes:
//
//	m, err := watcher.NewMonitor()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Close()
//
//	m.AddFilter(`^[^.].*\.lua$`) // visible .lua files only
//	m.AddListener(myListener)
//	m.WatchDir("/opt/app/lua")
//
// Events are delivered on the monitor's own goroutine; listeners must do
// their own synchronization. Debouncing is intentionally not provided:
// consumers that restart on change are expected to serialize restarts
// themselves, which makes bursts collapse behind one lock acquisition.
package watcher
