// Package googlevision classifies images with Google Cloud Vision label
// detection and maps the labels onto the taxonomy.
package googlevision

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/stock-categorizer/internal/categorizer"
	"fjacquet/stock-categorizer/internal/imagefile"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"
	"fjacquet/stock-categorizer/internal/providererror"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

const (
	// DefaultEndpoint is the public Vision API endpoint.
	DefaultEndpoint = "https://vision.googleapis.com/"
	maxLabels       = 20
	labelDetection  = "LABEL_DETECTION"
	providerName    = "Google Cloud Vision"
)

// Adapter calls images:annotate with LABEL_DETECTION.
type Adapter struct {
	endpoint string
	logger   logging.Logger
}

// New creates an adapter. An empty endpoint selects DefaultEndpoint.
func New(endpoint string, logger logging.Logger) *Adapter {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Adapter{endpoint: endpoint, logger: logging.OrDiscard(logger)}
}

func (a *Adapter) ID() models.ProviderID {
	return models.ProviderGoogleVision
}

// Classify implements categorizer.Adapter.
func (a *Adapter) Classify(ctx context.Context, img *imagefile.Image, secret string) (models.ClassificationResult, error) {
	labels, err := a.detectLabels(ctx, img, secret)
	if err != nil {
		a.logger.WithError(err).Warn("Label detection failed",
			logging.F(logging.FieldProvider, providerName),
			logging.F(logging.FieldStatusCode, providererror.StatusCode(err)))
		return models.FailedResult(providerName, err), nil
	}

	a.logger.Debug("Labels detected",
		logging.F(logging.FieldProvider, providerName),
		logging.F(logging.FieldCount, len(labels)))

	return categorizer.MapLabels(labels).WithProvider(providerName), nil
}

func (a *Adapter) detectLabels(ctx context.Context, img *imagefile.Image, secret string) ([]models.Label, error) {
	svc, err := vision.NewService(ctx,
		option.WithAPIKey(secret),
		option.WithEndpoint(a.endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vision client: %w", err)
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Content: img.Base64()},
			Features: []*vision.Feature{{
				Type:       labelDetection,
				MaxResults: maxLabels,
			}},
		}},
	}

	resp, err := svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Responses) == 0 {
		return nil, &providererror.ProviderError{Provider: providerName, Msg: "No labels detected"}
	}

	first := resp.Responses[0]
	if first.Error != nil && first.Error.Message != "" {
		return nil, &providererror.ProviderError{
			Provider: providerName,
			Msg:      fmt.Sprintf("%s API Error: %s", providerName, first.Error.Message),
		}
	}

	labels := make([]models.Label, 0, len(first.LabelAnnotations))
	for _, ann := range first.LabelAnnotations {
		if ann == nil || ann.Description == "" {
			continue
		}
		labels = append(labels, models.Label{Text: ann.Description, Score: ann.Score})
	}
	if len(labels) == 0 {
		return nil, &providererror.ProviderError{Provider: providerName, Msg: "No labels detected"}
	}
	return labels, nil
}

func wrapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = providererror.Truncate(gerr.Body, 200)
		}
		return &providererror.ProviderError{
			Provider:   providerName,
			StatusCode: gerr.Code,
			Msg:        fmt.Sprintf("%s API Error (%d): %s", providerName, gerr.Code, msg),
			Err:        err,
		}
	}
	return &providererror.ProviderError{Provider: providerName, Err: err}
}
