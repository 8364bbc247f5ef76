package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
	}{
		{name: "debug level with text format", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info level with json format", level: "info", format: "json", expectLevel: logrus.InfoLevel},
		{name: "upper case level", level: "WARN", format: "text", expectLevel: logrus.WarnLevel},
		{name: "error level with json format", level: "error", format: "JSON", expectLevel: logrus.ErrorLevel},
		{name: "invalid level defaults to info", level: "chatty", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapterWithOutput(tt.level, tt.format, &bytes.Buffer{})
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.logger.Level)

			if tt.format == "json" || tt.format == "JSON" {
				_, ok := adapter.logger.Formatter.(*logrus.JSONFormatter)
				assert.True(t, ok, "formatter should be JSONFormatter")
			} else {
				_, ok := adapter.logger.Formatter.(*logrus.TextFormatter)
				assert.True(t, ok, "formatter should be TextFormatter")
			}
		})
	}
}

func TestNewLogrusAdapterFromLogger(t *testing.T) {
	t.Run("with existing logger", func(t *testing.T) {
		existing := logrus.New()
		existing.SetLevel(logrus.DebugLevel)
		adapter := NewLogrusAdapterFromLogger(existing).(*LogrusAdapter)
		assert.Same(t, existing, adapter.Logrus())
	})

	t.Run("nil logger gets a fresh one", func(t *testing.T) {
		adapter := NewLogrusAdapterFromLogger(nil).(*LogrusAdapter)
		assert.NotNil(t, adapter.Logrus())
	})
}

func TestLogrusAdapter_JSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("debug", "json", &buf)

	logger.WithField(FieldProvider, "OpenRouter").
		WithFields(F(FieldModel, "qwen/qwen-2-vl-7b-instruct:free")).
		WithError(errors.New("HTTP 429")).
		Warn("Model attempt failed", F(FieldStatusCode, 429))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "Model attempt failed", entry["msg"])
	assert.Equal(t, "OpenRouter", entry[FieldProvider])
	assert.Equal(t, "qwen/qwen-2-vl-7b-instruct:free", entry[FieldModel])
	assert.Equal(t, "HTTP 429", entry["error"])
	assert.Equal(t, float64(429), entry[FieldStatusCode])
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("warn", "text", &buf)

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Error("visible error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible error")
}

func TestLogrusAdapter_DerivedLoggersDoNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogrusAdapterWithOutput("info", "json", &buf)

	base.WithField(FieldProvider, "Imagga").Info("derived")
	buf.Reset()
	base.Info("base")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, has := entry[FieldProvider]
	assert.False(t, has)
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	mock := NewMockLogger()
	assert.Same(t, mock, OrDiscard(mock))
}

func TestImplementsInterface(t *testing.T) {
	var _ Logger = &LogrusAdapter{}
	var _ Logger = &MockLogger{}
}

func TestErrorWriter(t *testing.T) {
	t.Run("logrus adapter writes through logrus", func(t *testing.T) {
		base, hook := logtest.NewNullLogger()
		w := ErrorWriter(NewLogrusAdapterFromLogger(base))
		_, err := w.Write([]byte("[Recovery] panic recovered\n"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		assert.Eventually(t, func() bool {
			last := hook.LastEntry()
			return last != nil && last.Level == logrus.ErrorLevel && last.Message == "[Recovery] panic recovered"
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("other loggers get one error entry per line", func(t *testing.T) {
		mock := NewMockLogger()
		w := ErrorWriter(mock)
		n, err := w.Write([]byte("first line\n\n  second line \n"))
		require.NoError(t, err)
		assert.Equal(t, 27, n)
		require.NoError(t, w.Close())

		entries := mock.GetEntriesByLevel("ERROR")
		require.Len(t, entries, 2)
		assert.Equal(t, "first line", entries[0].Message)
		assert.Equal(t, "second line", entries[1].Message)
	})

	t.Run("nil logger discards", func(t *testing.T) {
		_, err := ErrorWriter(nil).Write([]byte("dropped\n"))
		assert.NoError(t, err)
	})
}
