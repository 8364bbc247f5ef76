package categorizer

import (
	"regexp"
	"strings"

	"fjacquet/stock-categorizer/internal/models"

	"github.com/shopspring/decimal"
)

// NoReasonText replaces a missing REASON line.
const NoReasonText = "AI could not provide a clear reason."

// Field tags must start a line, optionally behind markdown bullets or
// emphasis, so tag words inside a preamble are not picked up.
var (
	categoryPattern   = regexp.MustCompile(`(?im)^[\s*_#>-]*CATEGORY[*_]*:\s*(.+)$`)
	confidencePattern = regexp.MustCompile(`(?im)^[\s*_#>-]*CONFIDENCE[*_]*:[\s*_]*(\d+(?:\.\d+)?)`)
	reasonPattern     = regexp.MustCompile(`(?ims)^[\s*_#>-]*REASON[*_]*:\s*(.+)`)

	hundred = decimal.NewFromInt(100)
)

// ParseResponse extracts the CATEGORY, CONFIDENCE and REASON fields from a
// generative model answer. The category must name a taxonomy entry exactly or
// case-insensitively, otherwise it becomes "Unable to categorize". Confidence
// is the 0-100 value scaled to [0,1]; a missing value yields 0. When model is
// set the reasoning is suffixed with it. The Provider field is left for the
// caller.
func ParseResponse(text, model string) models.ClassificationResult {
	category := models.CategoryUnable
	if m := categoryPattern.FindStringSubmatch(text); m != nil {
		category, _ = models.NormalizeCategory(cleanCategory(m[1]))
	}

	reasoning := NoReasonText
	if m := reasonPattern.FindStringSubmatch(text); m != nil {
		if r := strings.TrimSpace(m[1]); r != "" {
			reasoning = r
		}
	}
	if model != "" {
		reasoning += " (Model: " + model + ")"
	}

	return models.ClassificationResult{
		Category:   category,
		Confidence: parseConfidence(text),
		Reasoning:  reasoning,
	}
}

func parseConfidence(text string) float64 {
	m := confidencePattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return 0
	}
	f, _ := d.Div(hundred).Float64()
	return models.ClampConfidence(f)
}

// cleanCategory drops markdown emphasis and brackets models sometimes wrap
// around the category name.
func cleanCategory(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), "*_[]\"'` ")
}
