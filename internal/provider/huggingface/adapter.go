// Package huggingface classifies images with the Hugging Face Inference API
// in up to three stages: an image caption, zero-shot classification of the
// caption against the taxonomy, and, when either fails, direct image
// classification whose labels go through the keyword mapper.
package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fjacquet/stock-categorizer/internal/categorizer"
	"fjacquet/stock-categorizer/internal/imagefile"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"
	"fjacquet/stock-categorizer/internal/providererror"

	"github.com/shopspring/decimal"
)

const (
	providerName      = "Hugging Face"
	captionedProvider = "Hugging Face (BLIP + BART)"
	directProvider    = "Hugging Face (ViT)"

	// ZeroShotModel classifies captions against candidate labels.
	ZeroShotModel = "facebook/bart-large-mnli"
	// ImageClassifierModel is the direct classification fallback.
	ImageClassifierModel = "google/vit-base-patch16-224"
)

// DefaultEndpoints are tried in order for every model.
var DefaultEndpoints = []string{
	"https://router.huggingface.co/hf-inference/models",
	"https://api-inference.huggingface.co/models",
}

// DefaultCaptionModels are tried in order for the caption stage.
var DefaultCaptionModels = []string{
	"Salesforce/blip-image-captioning-large",
	"Salesforce/blip-image-captioning-base",
	"nlpconnect/vit-gpt2-image-captioning",
}

// Options configures the adapter.
type Options struct {
	Endpoints     []string
	CaptionModels []string
	Timeout       time.Duration
}

// Adapter implements categorizer.Adapter for Hugging Face.
type Adapter struct {
	endpoints     []string
	captionModels []string
	client        *inferenceClient
	logger        logging.Logger
}

// New creates the adapter. Empty options fall back to the defaults.
func New(opts Options, logger logging.Logger) *Adapter {
	endpoints := opts.Endpoints
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	captionModels := opts.CaptionModels
	if len(captionModels) == 0 {
		captionModels = DefaultCaptionModels
	}
	return &Adapter{
		endpoints:     endpoints,
		captionModels: captionModels,
		client:        &inferenceClient{http: &http.Client{Timeout: opts.Timeout}},
		logger:        logging.OrDiscard(logger),
	}
}

func (a *Adapter) ID() models.ProviderID {
	return models.ProviderHuggingFace
}

// Classify implements categorizer.Adapter.
func (a *Adapter) Classify(ctx context.Context, img *imagefile.Image, secret string) (models.ClassificationResult, error) {
	log := a.logger.WithField(logging.FieldProvider, providerName)

	log.Info("Step 1: generating image caption")
	caption, err := a.caption(ctx, img, secret)
	if err == nil {
		log.Info("Generated caption", logging.F("caption", caption))
		log.Info("Step 2: categorizing caption")
		var res models.ClassificationResult
		res, err = a.zeroShot(ctx, caption, secret)
		if err == nil {
			return res, nil
		}
		log.WithError(err).Warn("Zero-shot classification failed")
	} else {
		log.WithError(err).Warn("Caption generation failed")
	}

	if providererror.IsAuth(err) {
		return models.FailedResult(providerName, err), nil
	}

	log.Info("Step 3: direct image classification", logging.F(logging.FieldModel, ImageClassifierModel))
	labels, derr := a.classifyImage(ctx, img, secret)
	if derr != nil {
		log.WithError(derr).Error("Direct classification failed")
		return models.FailedResult(providerName, derr), nil
	}
	return categorizer.MapLabels(labels).WithProvider(directProvider), nil
}

type captionResponse struct {
	GeneratedText string `json:"generated_text"`
}

// caption returns the first non-empty caption over models and endpoints.
func (a *Adapter) caption(ctx context.Context, img *imagefile.Image, secret string) (string, error) {
	payload := map[string]string{"inputs": img.Base64()}
	var lastErr error
	for _, model := range a.captionModels {
		for _, endpoint := range a.endpoints {
			url := endpoint + "/" + model
			var raw json.RawMessage
			err := a.client.postJSON(ctx, url, secret, payload, &raw)
			if err == nil {
				if text := parseCaption(raw); text != "" {
					return text, nil
				}
				err = errors.New("Failed to generate image description.")
			}
			lastErr = err
			a.logger.WithError(err).Debug("Caption attempt failed",
				logging.F(logging.FieldModel, model),
				logging.F(logging.FieldEndpoint, endpoint))
			if providererror.IsAuth(err) {
				return "", err
			}
		}
	}
	return "", lastErr
}

func parseCaption(raw json.RawMessage) string {
	var list []captionResponse
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		return strings.TrimSpace(list[0].GeneratedText)
	}
	var single captionResponse
	if json.Unmarshal(raw, &single) == nil {
		return strings.TrimSpace(single.GeneratedText)
	}
	return ""
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type scoredLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// zeroShot ranks the taxonomy against caption and takes the top label.
func (a *Adapter) zeroShot(ctx context.Context, caption, secret string) (models.ClassificationResult, error) {
	payload := zeroShotRequest{
		Inputs:     caption,
		Parameters: zeroShotParameters{CandidateLabels: models.CategoryNames()},
	}

	var lastErr error
	for _, endpoint := range a.endpoints {
		var raw json.RawMessage
		err := a.client.postJSON(ctx, endpoint+"/"+ZeroShotModel, secret, payload, &raw)
		if err == nil {
			top, ok := parseZeroShot(raw)
			if ok {
				return captionResult(caption, top), nil
			}
			err = errors.New("empty zero-shot classification")
		}
		lastErr = err
		if providererror.IsAuth(err) {
			break
		}
	}
	return models.ClassificationResult{}, lastErr
}

// parseZeroShot accepts both {labels, scores} and [{label, score}] shapes and
// returns the highest scored label.
func parseZeroShot(raw json.RawMessage) (scoredLabel, bool) {
	var ranked struct {
		Labels []string  `json:"labels"`
		Scores []float64 `json:"scores"`
	}
	if json.Unmarshal(raw, &ranked) == nil && len(ranked.Labels) > 0 && len(ranked.Labels) == len(ranked.Scores) {
		return topOf(zip(ranked.Labels, ranked.Scores))
	}

	var list []scoredLabel
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		return topOf(list)
	}
	return scoredLabel{}, false
}

func zip(labels []string, scores []float64) []scoredLabel {
	out := make([]scoredLabel, len(labels))
	for i := range labels {
		out[i] = scoredLabel{Label: labels[i], Score: scores[i]}
	}
	return out
}

func topOf(list []scoredLabel) (scoredLabel, bool) {
	if len(list) == 0 {
		return scoredLabel{}, false
	}
	best := list[0]
	for _, l := range list[1:] {
		if l.Score > best.Score {
			best = l
		}
	}
	return best, true
}

func captionResult(caption string, top scoredLabel) models.ClassificationResult {
	category, _ := models.NormalizeCategory(top.Label)
	confidence := models.ClampConfidence(top.Score)
	pct := decimal.NewFromFloat(confidence).Mul(decimal.NewFromInt(100)).StringFixed(1)
	return models.ClassificationResult{
		Category:   category,
		Confidence: confidence,
		Reasoning: fmt.Sprintf(`Image analysis: "%s". Matched to category "%s" with %s%% confidence.`,
			caption, category, pct),
		Provider: captionedProvider,
	}
}

// classifyImage posts the raw image to the direct classifier.
func (a *Adapter) classifyImage(ctx context.Context, img *imagefile.Image, secret string) ([]models.Label, error) {
	var lastErr error
	for _, endpoint := range a.endpoints {
		var list []scoredLabel
		err := a.client.post(ctx, endpoint+"/"+ImageClassifierModel, secret, img.MIMEType(), img.Data, &list)
		if err == nil {
			if len(list) == 0 {
				err = errors.New("No labels detected")
			} else {
				labels := make([]models.Label, 0, len(list))
				for _, l := range list {
					labels = append(labels, models.Label{Text: l.Label, Score: l.Score})
				}
				return labels, nil
			}
		}
		lastErr = err
		if providererror.IsAuth(err) {
			break
		}
	}
	return nil, lastErr
}
