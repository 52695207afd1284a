// pattern: Functional Core

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// LogEntry is one decoded log line as shown in the TUI log pane.
type LogEntry struct {
	Timestamp time.Time      // When the log was created
	Level     string         // DEBUG, INFO, WARN, ERROR
	Scope     string         // Hierarchical scope (e.g., "git.myrepo")
	Message   string         // Log message
	Fields    map[string]any // Additional structured fields
}

// String renders the entry as one display line, fields sorted by key so
// the output is stable.
func (e LogEntry) String() string {
	line := fmt.Sprintf("%s %s [%s] %s",
		e.Timestamp.Format("15:04:05"), e.Level, e.Scope, e.Message)
	if len(e.Fields) == 0 {
		return line
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(line)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, e.Fields[k])
	}
	return sb.String()
}

// MatchesScope reports whether the entry's scope falls under prefix.
// An empty prefix matches everything.
func (e LogEntry) MatchesScope(prefix string) bool {
	return prefix == "" || strings.HasPrefix(e.Scope, prefix)
}

// ParseLevel normalizes a level string to its uppercase display form,
// defaulting unknown input to INFO.
func ParseLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug":
		return "DEBUG"
	case "warn", "warning":
		return "WARN"
	case "error":
		return "ERROR"
	case "info":
		return "INFO"
	default:
		return "INFO"
	}
}
