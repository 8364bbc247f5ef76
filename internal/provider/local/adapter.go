package local

import (
	"context"
	"fmt"

	"fjacquet/stock-categorizer/internal/imagefile"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"
)

const providerName = "Local Device"

// Options configures the local adapter.
type Options struct {
	Policy Policy
	TopK   int
	// ModelName is shown in the result's provider field.
	ModelName string
}

// Adapter implements categorizer.Adapter on top of a Handle.
type Adapter struct {
	handle *Handle
	opts   Options
	logger logging.Logger
}

// New creates the adapter. Zero options select the cascade policy, the
// default top-K and the "Metadata" model name.
func New(handle *Handle, opts Options, logger logging.Logger) *Adapter {
	if opts.Policy == "" {
		opts.Policy = PolicyCascade
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.ModelName == "" {
		opts.ModelName = "Metadata"
	}
	return &Adapter{handle: handle, opts: opts, logger: logging.OrDiscard(logger)}
}

func (a *Adapter) ID() models.ProviderID {
	return models.ProviderLocal
}

// Classify implements categorizer.Adapter. The secret is ignored.
func (a *Adapter) Classify(ctx context.Context, img *imagefile.Image, _ string) (models.ClassificationResult, error) {
	log := a.logger.WithField(logging.FieldProvider, providerName)

	if !a.handle.Loaded() {
		log.Info("Loading local model")
	}
	model, err := a.handle.Model(ctx)
	if err != nil {
		log.WithError(err).Warn("Local model unavailable")
		return models.FailedResult(providerName, fmt.Errorf("failed to load local model: %w", err)), nil
	}

	preds, err := model.Predict(ctx, img, a.opts.TopK)
	if err != nil {
		log.WithError(err).Warn("Local prediction failed")
		return models.FailedResult(providerName, err), nil
	}
	log.Debug("Local predictions", logging.F(logging.FieldCount, len(preds)))

	var res models.ClassificationResult
	switch a.opts.Policy {
	case PolicyMapper:
		res = MapPredictions(preds)
	default:
		res = Cascade(preds)
	}
	return res.WithProvider(fmt.Sprintf("%s (%s)", providerName, a.opts.ModelName)), nil
}
