// pattern: Imperative Shell

package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NopLogger returns a logger that discards everything. The default for
// tests and for headless code paths that never surface logs.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

// TestLogManager is a file-less Manager substitute: entries go only to the
// channel, at debug level, so tests can assert on what was logged.
type TestLogManager struct {
	sink   *ChannelSink
	root   *zap.Logger
	scoped map[string]*ScopedLogger
	mu     sync.Mutex
}

// NewTestLogManager creates a manager buffering up to size entries.
func NewTestLogManager(size int) *TestLogManager {
	sink := NewChannelSink(size)
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(sink),
		zapcore.DebugLevel,
	)
	return &TestLogManager{
		sink:   sink,
		root:   zap.New(core),
		scoped: make(map[string]*ScopedLogger),
	}
}

// For returns the cached logger for a scope, mirroring Manager.For.
func (m *TestLogManager) For(scope string) *ScopedLogger {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.scoped[scope]; ok {
		return l
	}
	l := &ScopedLogger{
		sugar: m.root.Named(scope).Sugar(),
		scope: scope,
	}
	m.scoped[scope] = l
	return l
}

// Entries returns the channel for receiving log entries.
func (m *TestLogManager) Entries() <-chan LogEntry {
	return m.sink.Entries()
}

// Close closes the entry channel.
func (m *TestLogManager) Close() error {
	return m.sink.Close()
}
