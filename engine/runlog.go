package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/jax-labs/apexflow/logger"
)

// LogLevel classifies run log entries.
type LogLevel string

const (
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogEntry is one timestamped line of an execution's log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
}

// RunLog is the append-only log of one execution. Entries accumulate for the
// run's whole duration and are returned to the caller regardless of outcome.
// Every entry is mirrored to the structured logger so operators see the same
// lines live that callers see post-hoc.
type RunLog struct {
	log     *logger.Logger
	entries []LogEntry
	nowFunc func() time.Time
}

// NewRunLog creates a run log mirroring entries to the given logger.
func NewRunLog(log *logger.Logger) *RunLog {
	return &RunLog{log: log, nowFunc: time.Now}
}

// Infof appends a formatted info entry.
func (r *RunLog) Infof(format string, args ...any) {
	r.append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf appends a formatted warning entry.
func (r *RunLog) Warnf(format string, args ...any) {
	r.append(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf appends a formatted error entry.
func (r *RunLog) Errorf(format string, args ...any) {
	r.append(LevelError, fmt.Sprintf(format, args...))
}

func (r *RunLog) append(level LogLevel, msg string) {
	r.entries = append(r.entries, LogEntry{
		Timestamp: r.nowFunc(),
		Level:     level,
		Message:   msg,
	})
	if r.log == nil {
		return
	}
	switch level {
	case LevelWarn:
		r.log.Warn(msg)
	case LevelError:
		r.log.Error(msg)
	default:
		r.log.Info(msg)
	}
}

// Entries returns the accumulated entries in append order.
func (r *RunLog) Entries() []LogEntry {
	out := make([]LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of entries.
func (r *RunLog) Len() int { return len(r.entries) }

// Contains reports whether any entry's message contains substr.
func (r *RunLog) Contains(substr string) bool {
	for _, e := range r.entries {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
