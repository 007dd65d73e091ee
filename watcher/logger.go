package watcher

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the watcher's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger replaces the watcher's logger.
func SetLogger(l *zap.Logger) {
	if l != nil {
		loggerOnce.Do(func() {})
		logger = l
	}
}
