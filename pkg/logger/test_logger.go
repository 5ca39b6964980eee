package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger writes to the test output and keeps every entry for assertions.
type TestLogger struct {
	*Logger
	observed *observer.ObservedLogs
}

func NewTestLogger(t *testing.T) *TestLogger {
	observedCore, observed := observer.New(zapcore.DebugLevel)
	testCore := zaptest.NewLogger(t, zaptest.Level(zapcore.DebugLevel)).Core()
	zl := zap.New(zapcore.NewTee(testCore, observedCore)).Named(LoggerName)
	return &TestLogger{
		Logger:   &Logger{Logger: zl},
		observed: observed,
	}
}

// GetLogs returns the captured messages in order.
func (tl *TestLogger) GetLogs() []string {
	entries := tl.observed.All()
	logs := make([]string, 0, len(entries))
	for _, e := range entries {
		logs = append(logs, e.Message)
	}
	return logs
}

// Entries exposes the captured entries with their fields.
func (tl *TestLogger) Entries() []observer.LoggedEntry {
	return tl.observed.All()
}

// Contains reports whether any captured message contains substr.
func (tl *TestLogger) Contains(substr string) bool {
	for _, msg := range tl.GetLogs() {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// UseTestLogger installs a TestLogger as the global logger until the test ends.
func UseTestLogger(t *testing.T) *TestLogger {
	loggerMutex.RLock()
	previous := globalLogger
	loggerMutex.RUnlock()

	tl := NewTestLogger(t)
	SetGlobalLogger(tl.Logger)
	t.Cleanup(func() {
		loggerMutex.Lock()
		globalLogger = previous
		loggerMutex.Unlock()
	})
	return tl
}
