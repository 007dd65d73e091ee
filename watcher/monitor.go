package watcher

import (
	"path/filepath"
	"regexp"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/wippyai/lua-runtime/errors"
)

// Listener receives change notifications for watched paths.
// FileChanged is delivered from the monitor's event goroutine.
type Listener interface {
	FileChanged(path string, op fsnotify.Op)
}

// Monitor watches directories and files for modifications and fans events
// out to registered listeners. Events are matched against the base name of
// the changed path; with filters installed, only matching names are
// delivered.
type Monitor struct {
	fw        *fsnotify.Watcher
	mu        sync.Mutex
	filters   []*regexp.Regexp
	listeners []Listener
	done      chan struct{}
	closeOnce sync.Once
}

// NewMonitor creates a monitor and starts its event loop.
func NewMonitor() (*Monitor, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Watch("", err)
	}
	m := &Monitor{fw: fw, done: make(chan struct{})}
	go m.loop()
	return m, nil
}

// AddFilter restricts delivery to base names matching the given regexp.
// Multiple filters are ORed.
func (m *Monitor) AddFilter(expr string) error {
	re, err := regexp.Compile(expr)
	if err != nil {
		return errors.InvalidInput(errors.PhaseWatch, err.Error())
	}
	m.mu.Lock()
	m.filters = append(m.filters, re)
	m.mu.Unlock()
	return nil
}

// AddListener registers a listener. The monitor holds a non-owning
// reference; remove the listener before destroying it.
func (m *Monitor) AddListener(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// RemoveListener unregisters a previously added listener.
func (m *Monitor) RemoveListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, x := range m.listeners {
		if x == l {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			return
		}
	}
}

// WatchDir starts watching a directory for changes to its entries.
func (m *Monitor) WatchDir(path string) error {
	if err := m.fw.Add(path); err != nil {
		return errors.Watch(path, err)
	}
	return nil
}

// WatchFile starts watching a single file.
func (m *Monitor) WatchFile(path string) error {
	if err := m.fw.Add(path); err != nil {
		return errors.Watch(path, err)
	}
	return nil
}

// Close stops the event loop and releases the underlying watcher.
// Subsequent calls are no-ops.
func (m *Monitor) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.done)
		err = m.fw.Close()
	})
	return err
}

func (m *Monitor) loop() {
	for {
		select {
		case <-m.done:
			return
		case ev, ok := <-m.fw.Events:
			if !ok {
				return
			}
			m.dispatch(ev)
		case err, ok := <-m.fw.Errors:
			if !ok {
				return
			}
			Logger().Warn("watch error", zap.Error(err))
		}
	}
}

func (m *Monitor) dispatch(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	base := filepath.Base(ev.Name)

	m.mu.Lock()
	matched := len(m.filters) == 0
	for _, re := range m.filters {
		if re.MatchString(base) {
			matched = true
			break
		}
	}
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	if !matched {
		return
	}
	for _, l := range listeners {
		l.FileChanged(ev.Name, ev.Op)
	}
}
