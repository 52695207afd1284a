// pattern: Imperative Shell

package logging

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// ChannelSink is a zapcore.WriteSyncer that decodes the JSON entries the
// core produces and delivers them on a bounded channel. Writes never block:
// when the buffer is full the oldest entry is evicted to make room.
type ChannelSink struct {
	out    chan LogEntry
	mu     sync.Mutex
	closed bool
}

// NewChannelSink returns a sink buffering up to size entries.
func NewChannelSink(size int) *ChannelSink {
	return &ChannelSink{out: make(chan LogEntry, size)}
}

// Write decodes one encoded log line and queues it. Undecodable input is
// swallowed so a formatting problem can never break logging itself.
func (s *ChannelSink) Write(p []byte) (int, error) {
	entry, ok := decodeEntry(p)
	if !ok {
		return len(p), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errors.New("channel sink is closed")
	}

	for {
		select {
		case s.out <- entry:
			return len(p), nil
		default:
		}
		// Full: evict the oldest and try once more.
		select {
		case <-s.out:
		default:
			return len(p), nil
		}
	}
}

// Sync satisfies zapcore.WriteSyncer.
func (s *ChannelSink) Sync() error {
	return nil
}

// Close closes the entry channel. Safe to call more than once.
func (s *ChannelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.out)
	}
	return nil
}

// Entries returns the channel consumers receive on.
func (s *ChannelSink) Entries() <-chan LogEntry {
	return s.out
}

// decodeEntry maps one JSON log line onto a LogEntry. Field names follow
// encoderConfig: "ts" (epoch seconds), "level", "logger", "msg"; everything
// else becomes a structured field.
func decodeEntry(data []byte) (LogEntry, bool) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, false
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "INFO",
		Scope:     "app",
		Fields:    make(map[string]any),
	}
	for key, value := range raw {
		switch key {
		case "msg":
			entry.Message, _ = value.(string)
		case "level":
			if s, ok := value.(string); ok {
				entry.Level = ParseLevel(s)
			}
		case "logger":
			if s, ok := value.(string); ok {
				entry.Scope = s
			}
		case "ts":
			if ts, ok := value.(float64); ok {
				sec := int64(ts)
				entry.Timestamp = time.Unix(sec, int64((ts-float64(sec))*1e9))
			}
		case "caller", "stacktrace":
			// Internal detail, not surfaced in the log pane.
		default:
			entry.Fields[key] = value
		}
	}
	return entry, true
}
