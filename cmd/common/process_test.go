package common_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"fjacquet/stock-categorizer/cmd/common"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Load() ([]models.Credential, error) {
	args := m.Called()
	creds, _ := args.Get(0).([]models.Credential)
	return creds, args.Error(1)
}

func TestResolveCredentials(t *testing.T) {
	fileCreds := []models.Credential{models.NewCredential(models.ProviderOpenAI, "sk-file")}
	envCreds := []models.Credential{models.NewCredential(models.ProviderGemini, "env")}

	tests := []struct {
		name    string
		loaded  []models.Credential
		loadErr error
		want    []models.Credential
		wantErr bool
	}{
		{name: "file wins", loaded: fileCreds, want: fileCreds},
		{name: "empty file falls back", loaded: []models.Credential{}, want: envCreds},
		{name: "load error", loadErr: errors.New("bad yaml"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := new(MockSource)
			src.On("Load").Return(tt.loaded, tt.loadErr).Once()

			got, err := common.ResolveCredentials(src, envCreds, logging.NewMockLogger())
			src.AssertExpectations(t)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveCredentials_NilSource(t *testing.T) {
	envCreds := []models.Credential{models.NewCredential(models.ProviderLocal, "")}
	got, err := common.ResolveCredentials(nil, envCreds, nil)
	require.NoError(t, err)
	assert.Equal(t, envCreds, got)
}

func TestPrintResult(t *testing.T) {
	r := models.ImageResult{
		Filename:   "dog.jpg",
		Category:   models.CategoryAnimals,
		Confidence: 0.87,
		Reasoning:  "a dog",
		Provider:   "OpenAI (gpt-4o)",
	}

	var text bytes.Buffer
	require.NoError(t, common.PrintResult(&text, r, false))
	assert.Contains(t, text.String(), "dog.jpg: Animals (87%) via OpenAI (gpt-4o)")
	assert.Contains(t, text.String(), "reasoning: a dog")

	var js bytes.Buffer
	require.NoError(t, common.PrintResult(&js, r, true))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "Animals", decoded["category"])
}
