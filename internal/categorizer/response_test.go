package categorizer

import (
	"testing"

	"fjacquet/stock-categorizer/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		model          string
		wantCategory   models.Category
		wantConfidence float64
		wantReasoning  string
	}{
		{
			name:           "canonical answer",
			text:           "CATEGORY: Animals\nCONFIDENCE: 87\nREASON: a dog is visible",
			wantCategory:   models.CategoryAnimals,
			wantConfidence: 0.87,
			wantReasoning:  "a dog is visible",
		},
		{
			name:           "model suffix",
			text:           "CATEGORY: Food\nCONFIDENCE: 92.5\nREASON: A plate of pasta.",
			model:          "gemini-1.5-flash",
			wantCategory:   models.CategoryFood,
			wantConfidence: 0.925,
			wantReasoning:  "A plate of pasta. (Model: gemini-1.5-flash)",
		},
		{
			name:           "case-insensitive tags and category",
			text:           "category: plants and flowers\nconfidence: 70\nreason: tulips",
			wantCategory:   models.CategoryPlants,
			wantConfidence: 0.7,
			wantReasoning:  "tulips",
		},
		{
			name:           "unknown category",
			text:           "CATEGORY: Pets\nCONFIDENCE: 90\nREASON: a cat",
			wantCategory:   models.CategoryUnable,
			wantConfidence: 0.9,
			wantReasoning:  "a cat",
		},
		{
			name:           "reason spans lines",
			text:           "CATEGORY: Travel\nCONFIDENCE: 60\nREASON: Eiffel tower.\nTourists in front.\n",
			wantCategory:   models.CategoryTravel,
			wantConfidence: 0.6,
			wantReasoning:  "Eiffel tower.\nTourists in front.",
		},
		{
			name:           "missing confidence and reason",
			text:           "CATEGORY: Sports",
			wantCategory:   models.CategorySports,
			wantConfidence: 0,
			wantReasoning:  NoReasonText,
		},
		{
			name:           "unparsable confidence",
			text:           "CATEGORY: Sports\nCONFIDENCE: high\nREASON: a ball",
			wantCategory:   models.CategorySports,
			wantConfidence: 0,
			wantReasoning:  "a ball",
		},
		{
			name:           "markdown decorations",
			text:           "**CATEGORY:** **Technology**\nCONFIDENCE: 80\nREASON: circuit board",
			wantCategory:   models.CategoryTechnology,
			wantConfidence: 0.8,
			wantReasoning:  "circuit board",
		},
		{
			name:           "confidence above 100 is clamped",
			text:           "CATEGORY: Drinks\nCONFIDENCE: 150\nREASON: coffee",
			wantCategory:   models.CategoryDrinks,
			wantConfidence: 1,
			wantReasoning:  "coffee",
		},
		{
			name:           "tag words inside a preamble",
			text:           "Picking a category: the dog dominates the frame. My confidence: 99, for this reason: fur.\nCATEGORY: Animals\nCONFIDENCE: 90\nREASON: a dog is visible",
			wantCategory:   models.CategoryAnimals,
			wantConfidence: 0.9,
			wantReasoning:  "a dog is visible",
		},
		{
			name:           "bulleted tags",
			text:           "- CATEGORY: Science\n- CONFIDENCE: 75\n- REASON: microscope",
			wantCategory:   models.CategoryScience,
			wantConfidence: 0.75,
			wantReasoning:  "microscope",
		},
		{
			name:           "no tags at all",
			text:           "I think this is a dog.",
			wantCategory:   models.CategoryUnable,
			wantConfidence: 0,
			wantReasoning:  NoReasonText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseResponse(tt.text, tt.model)
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantReasoning, got.Reasoning)
			assert.False(t, got.Failed())
		})
	}
}

func TestPrompt(t *testing.T) {
	assert.Contains(t, Prompt, "categories: Animals, Buildings and Architecture, Business,")
	assert.Contains(t, Prompt, "Transport, or Travel. Respond in this exact format:\n")
	assert.Contains(t, Prompt, "\nCATEGORY: [category name]\nCONFIDENCE: [0-100]\nREASON: ")
	for _, name := range models.CategoryNames() {
		assert.Contains(t, Prompt, name)
	}
}

func TestBuildPrompt_ShortLists(t *testing.T) {
	assert.Contains(t, buildPrompt([]string{"A"}), "categories: A. Respond")
	assert.Contains(t, buildPrompt([]string{"A", "B"}), "categories: A, or B. Respond")
}
