package store

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	err := os.WriteFile(path, []byte(content), 0600)
	require.NoError(t, err)
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "creds.yaml")
	writeFile(t, testFile, "credentials: []")

	s := NewCredentialStore("", nil)

	file, err := s.FindConfigFile(testFile)
	assert.NoError(t, err)
	assert.Equal(t, testFile, file)

	_, err = s.FindConfigFile(filepath.Join(dir, "nonexistent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "credentials.yaml")
	writeFile(t, file, `credentials:
  - provider: Google Gemini API
    key: " AIzaSyExample "
  - provider: imagga
    key: acc_123:secret
  - provider: local
    enabled: false
`)

	creds, err := NewCredentialStore(file, logging.NewMockLogger()).Load()
	require.NoError(t, err)
	require.Len(t, creds, 3)

	assert.Equal(t, models.NewCredential(models.ProviderGemini, "AIzaSyExample"), creds[0])
	assert.Equal(t, models.ProviderImagga, creds[1].Provider)
	assert.True(t, creds[1].Enabled)
	assert.Equal(t, models.ProviderLocal, creds[2].Provider)
	assert.False(t, creds[2].Enabled)
}

func TestLoad_MissingFile(t *testing.T) {
	logger := logging.NewMockLogger()
	creds, err := NewCredentialStore(filepath.Join(t.TempDir(), "missing.yaml"), logger).Load()
	assert.NoError(t, err)
	assert.Empty(t, creds)
	assert.True(t, logger.HasEntry("WARN", "Credentials file not found"))
}

func TestLoad_WarnsOnPermissiveFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "credentials.yaml")
	writeFile(t, file, "credentials: []")
	require.NoError(t, os.Chmod(file, 0644))

	logger := logging.NewMockLogger()
	_, err := NewCredentialStore(file, logger).Load()
	require.NoError(t, err)
	assert.True(t, logger.HasEntry("WARN", "Credentials file is readable by others"))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed", content: `{malformed: yaml: content}`},
		{name: "unknown provider", content: "credentials:\n  - provider: clarifai\n    key: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "credentials.yaml")
			writeFile(t, file, tt.content)
			_, err := NewCredentialStore(file, nil).Load()
			assert.Error(t, err)
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "credentials.yaml")
	s := NewCredentialStore(file, nil)

	want := []models.Credential{
		models.NewCredential(models.ProviderOpenRouter, "sk-or-1"),
		{Provider: models.ProviderHuggingFace, Secret: "hf_abc", Enabled: false},
	}
	require.NoError(t, s.Save(want))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(models.PermissionConfigFile), info.Mode().Perm())

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMockCredentialStore(t *testing.T) {
	m := &MockCredentialStore{Credentials: []models.Credential{models.NewCredential(models.ProviderLocal, "")}}
	creds, err := m.Load()
	require.NoError(t, err)
	creds[0].Enabled = false
	assert.True(t, m.Credentials[0].Enabled)
	assert.Equal(t, 1, m.LoadCalls)

	m.LoadError = assert.AnError
	_, err = m.Load()
	assert.ErrorIs(t, err, assert.AnError)
}
