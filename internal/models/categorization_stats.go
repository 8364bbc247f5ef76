package models

import (
	"fjacquet/stock-categorizer/internal/logging"
)

// CategorizationStats tracks outcomes across a batch of images.
type CategorizationStats struct {
	Total         int // images processed
	Successful    int // images with a taxonomy category
	Failed        int // images where every credential failed
	Uncategorized int // provider answered but the answer was not in the taxonomy
	Duplicates    int // images that reused the result of an earlier identical image
}

// Record classifies one image result into the counters.
func (cs *CategorizationStats) Record(r ImageResult) {
	cs.Total++
	switch {
	case r.Category.IsValid():
		cs.Successful++
	case FailedProvider(r.Provider):
		cs.Failed++
	default:
		cs.Uncategorized++
	}
}

// RecordDuplicate counts an image whose result was reused.
func (cs *CategorizationStats) RecordDuplicate() {
	cs.Duplicates++
}

// LogSummary logs a summary of categorization statistics
func (cs CategorizationStats) LogSummary(logger logging.Logger, source string) {
	if logger == nil {
		return
	}

	logger.Info("Categorization summary",
		logging.Field{Key: "source", Value: source},
		logging.Field{Key: "total_images", Value: cs.Total},
		logging.Field{Key: "successful", Value: cs.Successful},
		logging.Field{Key: "failed", Value: cs.Failed},
		logging.Field{Key: "uncategorized", Value: cs.Uncategorized},
		logging.Field{Key: "duplicates", Value: cs.Duplicates},
		logging.Field{Key: "success_rate", Value: cs.GetSuccessRate()},
	)
}

// GetSuccessRate calculates the success rate as a percentage
func (cs CategorizationStats) GetSuccessRate() float64 {
	if cs.Total == 0 {
		return 0.0
	}
	return float64(cs.Successful) / float64(cs.Total) * 100.0
}
