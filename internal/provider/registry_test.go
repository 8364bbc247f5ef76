package provider

import (
	"context"
	"testing"

	"fjacquet/stock-categorizer/internal/imagefile"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct{ id models.ProviderID }

func (s stubAdapter) ID() models.ProviderID { return s.id }

func (s stubAdapter) Classify(context.Context, *imagefile.Image, string) (models.ClassificationResult, error) {
	return models.ClassificationResult{Category: models.CategoryTravel, Provider: string(s.id)}, nil
}

func TestBuild_CoversEveryProvider(t *testing.T) {
	reg, err := Build(Settings{}, nil, logging.NewMockLogger())
	require.NoError(t, err)
	assert.Empty(t, reg.Missing())
	assert.Len(t, reg.Providers(), len(models.AllProviders()))

	for _, id := range models.AllProviders() {
		a, ok := reg.Adapter(id)
		require.True(t, ok, id)
		assert.Equal(t, id, a.ID())
	}
}

func TestBuild_Discoverers(t *testing.T) {
	reg, err := Build(Settings{}, nil, nil)
	require.NoError(t, err)

	for _, id := range []models.ProviderID{models.ProviderGemini, models.ProviderOpenAI, models.ProviderOpenRouter} {
		_, ok := reg.Discoverer(id)
		assert.True(t, ok, id)
	}
	_, ok := reg.Discoverer(models.ProviderImagga)
	assert.False(t, ok)
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(stubAdapter{models.ProviderImagga}, nil, stubAdapter{models.ProviderLocal})
	require.NoError(t, err)
	assert.Equal(t, []models.ProviderID{models.ProviderImagga, models.ProviderLocal}, reg.Providers())
	assert.Len(t, reg.Missing(), len(models.AllProviders())-2)

	_, ok := reg.Adapter(models.ProviderGemini)
	assert.False(t, ok)

	_, err = NewRegistry(stubAdapter{models.ProviderImagga}, stubAdapter{models.ProviderImagga})
	assert.Error(t, err)
}
