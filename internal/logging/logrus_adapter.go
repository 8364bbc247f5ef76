package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogrusAdapter implements Logger on top of a logrus entry.
type LogrusAdapter struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

// NewLogrusAdapter builds a logger with the given level ("debug", "info",
// "warn", "error") and format ("json" or "text"). Unknown levels fall back to
// info.
func NewLogrusAdapter(level, format string) Logger {
	return newLogrusAdapter(level, format, nil)
}

// NewLogrusAdapterWithOutput is NewLogrusAdapter writing to out.
func NewLogrusAdapterWithOutput(level, format string, out io.Writer) Logger {
	return newLogrusAdapter(level, format, out)
}

func newLogrusAdapter(level, format string, out io.Writer) Logger {
	logger := logrus.New()
	if out != nil {
		logger.SetOutput(out)
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &LogrusAdapter{
		logger: logger,
		entry:  logrus.NewEntry(logger),
	}
}

// NewLogrusAdapterFromLogger wraps an existing logrus logger.
func NewLogrusAdapterFromLogger(logger *logrus.Logger) Logger {
	if logger == nil {
		logger = logrus.New()
	}
	return &LogrusAdapter{
		logger: logger,
		entry:  logrus.NewEntry(logger),
	}
}

// NewDiscardLogger returns a logger that drops everything. Handy as a default
// when a constructor receives a nil logger.
func NewDiscardLogger() Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewLogrusAdapterFromLogger(logger)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l Logger) Logger {
	if l == nil {
		return NewDiscardLogger()
	}
	return l
}

func (l *LogrusAdapter) Debug(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Debug(msg)
}

func (l *LogrusAdapter) Info(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Info(msg)
}

func (l *LogrusAdapter) Warn(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Warn(msg)
}

func (l *LogrusAdapter) Error(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Error(msg)
}

func (l *LogrusAdapter) WithError(err error) Logger {
	return &LogrusAdapter{
		logger: l.logger,
		entry:  l.entry.WithError(err),
	}
}

func (l *LogrusAdapter) WithField(key string, value interface{}) Logger {
	return &LogrusAdapter{
		logger: l.logger,
		entry:  l.entry.WithField(key, value),
	}
}

func (l *LogrusAdapter) WithFields(fields ...Field) Logger {
	return &LogrusAdapter{
		logger: l.logger,
		entry:  l.entry.WithFields(convertFields(fields)),
	}
}

func (l *LogrusAdapter) Fatal(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Fatal(msg)
}

func (l *LogrusAdapter) Fatalf(msg string, args ...interface{}) {
	l.entry.Fatalf(msg, args...)
}

// Logrus exposes the underlying logger, e.g. to hand its writer to gin.
func (l *LogrusAdapter) Logrus() *logrus.Logger {
	return l.logger
}

// ErrorWriter returns a writer that logs each line written to it at error
// level. The caller closes it when done.
func ErrorWriter(l Logger) io.WriteCloser {
	if a, ok := l.(*LogrusAdapter); ok {
		return a.Logrus().WriterLevel(logrus.ErrorLevel)
	}
	return lineWriter{logger: OrDiscard(l)}
}

type lineWriter struct {
	logger Logger
}

func (w lineWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			w.logger.Error(line)
		}
	}
	return len(p), nil
}

func (lineWriter) Close() error { return nil }

func convertFields(fields []Field) logrus.Fields {
	logrusFields := make(logrus.Fields, len(fields))
	for _, field := range fields {
		logrusFields[field.Key] = field.Value
	}
	return logrusFields
}
