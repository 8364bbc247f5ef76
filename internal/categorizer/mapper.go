package categorizer

import (
	"fmt"
	"strings"

	"fjacquet/stock-categorizer/internal/models"

	"github.com/shopspring/decimal"
)

const (
	maxExplainedKeywords = 5
	maxExplainedLabels   = 5
)

var (
	mappedBaseConfidence = decimal.NewFromFloat(0.7)
	mappedScoreWeight    = decimal.NewFromFloat(0.1)
	mappedMaxConfidence  = decimal.NewFromFloat(0.99)
)

// UnmatchedConfidence is reported by MapLabels when no keyword matched.
const UnmatchedConfidence = 0.5

// MapLabels maps provider labels onto the taxonomy by keyword scoring. Each
// label adds its score to every category with a keyword contained in the
// label text; the category with the strictly greatest total wins, ties going
// to the earlier category in canonical order. The confidence is a heuristic
// (0.7 + 0.1 per unit of score, capped at 0.99, or 0.5 with no match), not a
// calibrated probability. The Provider field is left for the caller.
func MapLabels(labels []models.Label) models.ClassificationResult {
	scores := make([]float64, len(categoryKeywords))
	matched := make([][]string, len(categoryKeywords))

	for _, label := range labels {
		text := strings.ToLower(label.Text)
		for i, entry := range categoryKeywords {
			kw, ok := firstContained(text, entry.keywords)
			if !ok {
				continue
			}
			scores[i] += label.Score
			if !contains(matched[i], kw) {
				matched[i] = append(matched[i], kw)
			}
		}
	}

	best := -1
	maxScore := 0.0
	for i, score := range scores {
		if score > maxScore {
			maxScore = score
			best = i
		}
	}

	topLabels := quoteLabels(labels, maxExplainedLabels)
	if best < 0 {
		return models.ClassificationResult{
			Category:   models.DefaultCategory,
			Confidence: UnmatchedConfidence,
			Reasoning: fmt.Sprintf("The AI detected labels: %s, but found no strong direct matches with specific category keywords. Defaulting to %q based on general visual characteristics.",
				topLabels, models.DefaultCategory),
			Labels: models.LabelTexts(labels),
		}
	}

	category := categoryKeywords[best].category
	keywords := matched[best]
	if len(keywords) > maxExplainedKeywords {
		keywords = keywords[:maxExplainedKeywords]
	}
	return models.ClassificationResult{
		Category:   category,
		Confidence: mappedConfidence(maxScore),
		Reasoning: fmt.Sprintf("The AI detected labels: %s. It matched keywords %q which align with the %q category.",
			topLabels, strings.Join(keywords, ", "), category),
		Labels: models.LabelTexts(labels),
	}
}

func mappedConfidence(score float64) float64 {
	c := mappedBaseConfidence.Add(decimal.NewFromFloat(score).Mul(mappedScoreWeight))
	if c.GreaterThan(mappedMaxConfidence) {
		c = mappedMaxConfidence
	}
	f, _ := c.Float64()
	return f
}

func firstContained(text string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}

func quoteLabels(labels []models.Label, limit int) string {
	if len(labels) > limit {
		labels = labels[:limit]
	}
	quoted := make([]string, 0, len(labels))
	for _, l := range labels {
		quoted = append(quoted, `"`+l.Text+`"`)
	}
	return strings.Join(quoted, ", ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
