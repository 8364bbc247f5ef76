package categorizer

import (
	"context"

	"fjacquet/stock-categorizer/internal/imagefile"
	"fjacquet/stock-categorizer/internal/models"
)

// Adapter classifies an image with one provider.
//
// Ordinary provider failures (HTTP errors, empty answers, exhausted model
// chains) are reported as a result built with models.FailedResult and a nil
// error. An error is returned only when the credential itself is unusable or
// no model could be discovered for it.
type Adapter interface {
	// ID returns the provider this adapter serves.
	ID() models.ProviderID

	// Classify runs the provider's own model/endpoint fallback chain.
	Classify(ctx context.Context, img *imagefile.Image, secret string) (models.ClassificationResult, error)
}

// Resolver finds the adapter for a provider.
type Resolver interface {
	Adapter(id models.ProviderID) (Adapter, bool)
}

// AttemptObserver is notified after every adapter call.
type AttemptObserver interface {
	ObserveAttempt(provider models.ProviderID, outcome string, seconds float64)
}

// Attempt outcomes reported to an AttemptObserver.
const (
	OutcomeSuccess     = "success"
	OutcomeUnanswered  = "unanswered"
	OutcomeFailed      = "failed"
	OutcomeError       = "error"
	OutcomeUnsupported = "unsupported"
)
