package logging

import (
	"fmt"
	"sync"
)

// MockLogger records entries for assertions in tests. Loggers derived through
// WithError/WithField/WithFields share the same entry sink, so entries logged
// by a component on a derived logger are visible on the root mock.
type MockLogger struct {
	sink          *entrySink
	pendingError  error
	pendingFields []Field
}

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

type entrySink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewMockLogger returns an empty mock.
func NewMockLogger() *MockLogger {
	return &MockLogger{sink: &entrySink{}}
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	if m.sink == nil {
		m.sink = &entrySink{}
	}
	all := make([]Field, 0, len(m.pendingFields)+len(fields))
	all = append(all, m.pendingFields...)
	all = append(all, fields...)

	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.entries = append(m.sink.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  all,
		Error:   m.pendingError,
	})
}

func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("DEBUG", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...Field)  { m.record("INFO", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...Field)  { m.record("WARN", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("ERROR", msg, fields) }

// Fatal records the entry; the mock never exits.
func (m *MockLogger) Fatal(msg string, fields ...Field) { m.record("FATAL", msg, fields) }

func (m *MockLogger) Fatalf(msg string, args ...interface{}) {
	m.record("FATAL", fmt.Sprintf(msg, args...), nil)
}

func (m *MockLogger) WithError(err error) Logger {
	return m.derive(err, nil)
}

func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return m.derive(m.pendingError, []Field{{Key: key, Value: value}})
}

func (m *MockLogger) WithFields(fields ...Field) Logger {
	return m.derive(m.pendingError, fields)
}

func (m *MockLogger) derive(err error, fields []Field) *MockLogger {
	if m.sink == nil {
		m.sink = &entrySink{}
	}
	merged := make([]Field, 0, len(m.pendingFields)+len(fields))
	merged = append(merged, m.pendingFields...)
	merged = append(merged, fields...)
	return &MockLogger{sink: m.sink, pendingError: err, pendingFields: merged}
}

// GetEntries returns a snapshot of all captured entries.
func (m *MockLogger) GetEntries() []LogEntry {
	if m.sink == nil {
		return nil
	}
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	out := make([]LogEntry, len(m.sink.entries))
	copy(out, m.sink.entries)
	return out
}

// GetEntriesByLevel returns captured entries of one level.
func (m *MockLogger) GetEntriesByLevel(level string) []LogEntry {
	var entries []LogEntry
	for _, entry := range m.GetEntries() {
		if entry.Level == level {
			entries = append(entries, entry)
		}
	}
	return entries
}

// HasEntry reports whether an entry with level and message was captured.
func (m *MockLogger) HasEntry(level, message string) bool {
	for _, entry := range m.GetEntries() {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}
	return false
}

// FieldValue returns the value of key on entry, if present.
func (e LogEntry) FieldValue(key string) (interface{}, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}
