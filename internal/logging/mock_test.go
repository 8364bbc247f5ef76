package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLogger_DerivedLoggersShareEntries(t *testing.T) {
	root := NewMockLogger()
	child := root.WithField(FieldProvider, "Hugging Face").WithError(errors.New("boom"))
	child.Warn("Caption endpoint failed", F(FieldEndpoint, "https://router.huggingface.co/hf-inference/models"))
	root.Info("Classified image")

	entries := root.GetEntries()
	require.Len(t, entries, 2)

	warn := entries[0]
	assert.Equal(t, "WARN", warn.Level)
	assert.EqualError(t, warn.Error, "boom")
	provider, ok := warn.FieldValue(FieldProvider)
	require.True(t, ok)
	assert.Equal(t, "Hugging Face", provider)
	_, ok = warn.FieldValue(FieldEndpoint)
	assert.True(t, ok)

	assert.True(t, root.HasEntry("INFO", "Classified image"))
	assert.False(t, root.HasEntry("ERROR", "Classified image"))
	assert.Len(t, root.GetEntriesByLevel("WARN"), 1)
}

func TestMockLogger_FatalDoesNotExit(t *testing.T) {
	m := NewMockLogger()
	m.Fatalf("cannot load %s", "config.yaml")
	assert.True(t, m.HasEntry("FATAL", "cannot load config.yaml"))
}

func TestMockLogger_ZeroValueUsable(t *testing.T) {
	var m MockLogger
	m.Info("hello")
	assert.Len(t, m.GetEntries(), 1)
}
