package categorizer

import (
	"strings"

	"fjacquet/stock-categorizer/internal/models"
)

// Prompt is the instruction sent with the image to every generative provider.
var Prompt = buildPrompt(models.CategoryNames())

func buildPrompt(names []string) string {
	var list string
	switch n := len(names); n {
	case 0:
	case 1:
		list = names[0]
	default:
		list = strings.Join(names[:n-1], ", ") + ", or " + names[n-1]
	}

	var b strings.Builder
	b.WriteString("Analyze this image carefully. Identify all objects, subjects, themes, colors, and mood. ")
	b.WriteString("Then categorize it into EXACTLY ONE of these Adobe Stock categories: ")
	b.WriteString(list)
	b.WriteString(". Respond in this exact format:\n")
	b.WriteString("CATEGORY: [category name]\n")
	b.WriteString("CONFIDENCE: [0-100]\n")
	b.WriteString("REASON: [detailed explanation of why this category fits, mentioning specific detected elements]")
	return b.String()
}
