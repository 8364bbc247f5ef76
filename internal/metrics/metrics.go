package metrics

import (
	"sync"

	"fjacquet/stock-categorizer/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ProviderAttemptsTotal counts adapter calls by provider and outcome.
	ProviderAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockcat",
		Subsystem: "categorizer",
		Name:      "provider_attempts_total",
		Help:      "Total number of provider attempts, labeled by provider and outcome.",
	}, []string{"provider", "outcome"})

	// ProviderAttemptDurationSeconds is the time spent in one adapter call.
	ProviderAttemptDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stockcat",
		Subsystem: "categorizer",
		Name:      "provider_attempt_duration_seconds",
		Help:      "Time spent in one provider attempt, including its model fallback chain.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60},
	}, []string{"provider"})

	// ImagesTotal counts classified images by result.
	ImagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockcat",
		Subsystem: "categorizer",
		Name:      "images_total",
		Help:      "Total number of images processed, labeled by result.",
	}, []string{"result"})

	// UploadsInFlight is the number of upload requests being classified.
	UploadsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stockcat",
		Subsystem: "server",
		Name:      "uploads_in_flight",
		Help:      "Current number of uploads being classified.",
	})
)

// Image results reported to ImagesTotal.
const (
	ResultCategorized = "categorized"
	ResultUnanswered  = "unanswered"
	ResultFailed      = "failed"
	ResultDuplicate   = "duplicate"
)

// Register registers the metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ProviderAttemptsTotal,
			ProviderAttemptDurationSeconds,
			ImagesTotal,
			UploadsInFlight,
		)
	})
}

// Observer feeds orchestrator attempts into the provider metrics.
type Observer struct{}

// ObserveAttempt implements categorizer.AttemptObserver.
func (Observer) ObserveAttempt(provider models.ProviderID, outcome string, seconds float64) {
	ProviderAttemptsTotal.WithLabelValues(string(provider), outcome).Inc()
	if seconds > 0 {
		ProviderAttemptDurationSeconds.WithLabelValues(string(provider)).Observe(seconds)
	}
}

// RecordImage counts one image result.
func RecordImage(r models.ImageResult) {
	ImagesTotal.WithLabelValues(ResultOf(r)).Inc()
}

// ResultOf buckets an image result into one of the Result constants.
func ResultOf(r models.ImageResult) string {
	switch {
	case r.Category.IsValid():
		return ResultCategorized
	case models.FailedProvider(r.Provider):
		return ResultFailed
	default:
		return ResultUnanswered
	}
}
