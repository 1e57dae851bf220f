// Package mocks provides testify-based doubles for the ports used in unit tests.
package mocks

import (
	"sync"

	"weatherbot.app/internal/ports"
)

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...ports.Field) {}
func (NopLogger) Info(string, ...ports.Field)  {}
func (NopLogger) Warn(string, ...ports.Field)  {}
func (NopLogger) Error(string, ...ports.Field) {}

// LogEntry is a message captured by RecordingLogger.
type LogEntry struct {
	Level   string
	Message string
	Fields  []ports.Field
}

// RecordingLogger keeps every entry for later assertions.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (l *RecordingLogger) Debug(msg string, fields ...ports.Field) { l.add("DEBUG", msg, fields) }
func (l *RecordingLogger) Info(msg string, fields ...ports.Field)  { l.add("INFO", msg, fields) }
func (l *RecordingLogger) Warn(msg string, fields ...ports.Field)  { l.add("WARN", msg, fields) }
func (l *RecordingLogger) Error(msg string, fields ...ports.Field) { l.add("ERROR", msg, fields) }

func (l *RecordingLogger) add(level, msg string, fields []ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: msg, Fields: fields})
}

// Entries returns a copy of the captured entries.
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry(nil), l.entries...)
}
