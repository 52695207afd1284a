// pattern: Imperative Shell

package logging

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds configuration for the log manager.
type Config struct {
	FilePath       string // Path to log file
	MaxSizeMB      int    // Max size in MB before rotation
	MaxBackups     int    // Max number of old log files to keep
	MaxAgeDays     int    // Max days to keep old log files
	Level          string // Minimum log level (debug, info, warn, error)
	ChannelBufSize int    // Buffer size for the TUI entry channel
}

// LoggerProvider is an interface for obtaining scoped loggers.
// Both Manager and TestLogManager implement this interface.
type LoggerProvider interface {
	For(scope string) *ScopedLogger
}

// ScopedLogger is a named logger handed to each component. Methods take a
// message and alternating key-value pairs. The zero value discards everything.
type ScopedLogger struct {
	sugar *zap.SugaredLogger
	scope string
}

func (l *ScopedLogger) Debug(msg string, kv ...any) {
	if l.sugar != nil {
		l.sugar.Debugw(msg, kv...)
	}
}

func (l *ScopedLogger) Info(msg string, kv ...any) {
	if l.sugar != nil {
		l.sugar.Infow(msg, kv...)
	}
}

func (l *ScopedLogger) Warn(msg string, kv ...any) {
	if l.sugar != nil {
		l.sugar.Warnw(msg, kv...)
	}
}

func (l *ScopedLogger) Error(msg string, kv ...any) {
	if l.sugar != nil {
		l.sugar.Errorw(msg, kv...)
	}
}

// With returns a logger carrying the given key-value pairs on every entry.
func (l *ScopedLogger) With(kv ...any) *ScopedLogger {
	if l.sugar == nil {
		return l
	}
	return &ScopedLogger{sugar: l.sugar.With(kv...), scope: l.scope}
}

// Scope returns the logger's hierarchical scope.
func (l *ScopedLogger) Scope() string {
	return l.scope
}

// Manager owns the zap core writing to both the rotated log file and the
// bounded entry channel consumed by the TUI log pane.
type Manager struct {
	root   *zap.Logger
	sink   *ChannelSink
	file   *lumberjack.Logger
	scoped map[string]*ScopedLogger
	mu     sync.Mutex
}

// NewManager creates a log manager writing JSON to cfg.FilePath with
// rotation, teed into a channel sink of cfg.ChannelBufSize entries.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("log file path is required")
	}
	applyDefaults(&cfg)

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, err
	}

	file := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	sink := NewChannelSink(cfg.ChannelBufSize)

	level := parseZapLevel(cfg.Level)
	enc := zapcore.NewJSONEncoder(encoderConfig())
	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.AddSync(file), level),
		zapcore.NewCore(enc, zapcore.AddSync(sink), level),
	)

	return &Manager{
		root:   zap.New(core),
		sink:   sink,
		file:   file,
		scoped: make(map[string]*ScopedLogger),
	}, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ChannelBufSize == 0 {
		cfg.ChannelBufSize = 1000
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 5
	}
	if cfg.MaxAgeDays == 0 {
		cfg.MaxAgeDays = 7
	}
}

// parseZapLevel maps the config string to a zap level, defaulting to info.
func parseZapLevel(s string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// encoderConfig is shared between the file and channel cores so the sink
// can rely on the field names it parses.
func encoderConfig() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.EpochTimeEncoder
	enc.EncodeLevel = zapcore.LowercaseLevelEncoder
	return enc
}

// For returns the logger for a scope, creating and caching it on first use.
// Scopes are hierarchical, e.g. "orchestrator" or "git.myrepo".
func (m *Manager) For(scope string) *ScopedLogger {
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

// Entries returns the channel for consuming log entries.
func (m *Manager) Entries() <-chan LogEntry {
	return m.sink.Entries()
}

// Sync flushes buffered log output.
func (m *Manager) Sync() error {
	return m.root.Sync()
}

// Close syncs and releases the file writer and the channel sink.
func (m *Manager) Close() error {
	_ = m.Sync()
	_ = m.sink.Close()
	return m.file.Close()
}
