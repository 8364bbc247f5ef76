package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories_OrderAndSize(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 21)
	assert.Equal(t, CategoryAnimals, cats[0])
	assert.Equal(t, CategoryGraphicResources, cats[7])
	assert.Equal(t, CategoryTravel, cats[20])

	// Callers get a copy.
	cats[0] = "Mutated"
	assert.Equal(t, CategoryAnimals, Categories()[0])
}

func TestCategory_IsValid(t *testing.T) {
	assert.True(t, CategoryBusiness.IsValid())
	assert.False(t, Category("business").IsValid())
	assert.False(t, CategoryUnable.IsValid())
	assert.False(t, Category("").IsValid())
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   Category
		wantOK bool
	}{
		{name: "exact", raw: "Animals", want: CategoryAnimals, wantOK: true},
		{name: "surrounding whitespace", raw: "  Food \r", want: CategoryFood, wantOK: true},
		{name: "lower case", raw: "plants and flowers", want: CategoryPlants, wantOK: true},
		{name: "upper case", raw: "THE ENVIRONMENT", want: CategoryEnvironment, wantOK: true},
		{name: "unknown", raw: "Cats", want: CategoryUnable, wantOK: false},
		{name: "partial", raw: "Plants", want: CategoryUnable, wantOK: false},
		{name: "empty", raw: "", want: CategoryUnable, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeCategory(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestParseProviderID(t *testing.T) {
	tests := map[string]ProviderID{
		"Google Gemini API": ProviderGemini,
		"gemini":            ProviderGemini,
		"hf":                ProviderHuggingFace,
		"openrouter":        ProviderOpenRouter,
		"Local Device":      ProviderLocal,
		"vision":            ProviderGoogleVision,
	}
	for in, want := range tests {
		got, err := ParseProviderID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseProviderID("clarifai")
	assert.Error(t, err)
}

func TestCredential_Usable(t *testing.T) {
	assert.True(t, NewCredential(ProviderGemini, "abc").Usable())
	assert.False(t, NewCredential(ProviderGemini, "   ").Usable())
	assert.False(t, NewCredential(ProviderGemini, "").Usable())
	assert.True(t, NewCredential(ProviderLocal, "").Usable())
	assert.False(t, Credential{Provider: ProviderGemini, Secret: "abc"}.Usable())
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "EMPTY", MaskSecret(" "))
	assert.Equal(t, "****", MaskSecret("abcd"))
	assert.Equal(t, "AIzaS...wxyz", MaskSecret("AIzaSyAbCdEfGhIjKlMnOpwxyz"))
}

func TestFailedResult(t *testing.T) {
	r := FailedResult("OpenRouter", errors.New("HTTP 429"))
	assert.Equal(t, CategoryUnable, r.Category)
	assert.Zero(t, r.Confidence)
	assert.Equal(t, "Analysis failed: HTTP 429", r.Reasoning)
	assert.Equal(t, "OpenRouter (Failed)", r.Provider)
	assert.True(t, r.Failed())

	ok := ClassificationResult{Category: CategoryUnable, Provider: "Google Gemini API (gemini-1.5-flash)"}
	assert.False(t, ok.Failed())
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-0.2))
	assert.Equal(t, 1.0, ClampConfidence(1.7))
	assert.Equal(t, 0.42, ClampConfidence(0.42))
}

func TestNewImageResult(t *testing.T) {
	r := NewImageResult("/tmp/uploads/1234-dog.jpg", ClassificationResult{
		Category:   CategoryAnimals,
		Confidence: 0.87,
		Reasoning:  "a dog",
		Provider:   "Google Cloud Vision",
	})
	assert.Equal(t, "1234-dog.jpg", r.Filename)
	assert.NotNil(t, r.Suggestions)
	assert.Empty(t, r.Suggestions)
	assert.Equal(t, "1234-dog.jpg: Animals (87%) via Google Cloud Vision", r.String())
}

func TestCategorizationStats(t *testing.T) {
	var stats CategorizationStats
	stats.Record(ImageResult{Category: CategoryFood, Provider: "OpenAI"})
	stats.Record(ImageResult{Category: CategoryUnable, Provider: "Categorizer (Failed)"})
	stats.Record(ImageResult{Category: CategoryUnable, Provider: "OpenAI"})
	stats.Record(ImageResult{Category: CategoryFood, Provider: "OpenAI"})
	stats.RecordDuplicate()

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Successful)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Uncategorized)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 50.0, stats.GetSuccessRate())
	assert.Equal(t, 0.0, CategorizationStats{}.GetSuccessRate())
}
