package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Label is one tag produced by a label-detection style provider. Provider
// order usually doubles as a relevance rank.
type Label struct {
	Text  string
	Score float64
}

// LabelTexts returns the label texts in input order.
func LabelTexts(labels []Label) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, l.Text)
	}
	return out
}

// ClassificationResult is the common output shape of every adapter and of the
// orchestrator. Values are never mutated after creation.
type ClassificationResult struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Provider   string   `json:"provider"`
	// Labels holds the raw provider labels when the provider produced any.
	Labels []string `json:"labels,omitempty"`
	failed bool
}

const failedSuffix = " (Failed)"

// FailedResult builds the result an adapter returns for an ordinary provider
// failure: the sentinel category, zero confidence and the failure message.
func FailedResult(providerName string, err error) ClassificationResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ClassificationResult{
		Category:   CategoryUnable,
		Confidence: 0,
		Reasoning:  "Analysis failed: " + msg,
		Provider:   providerName + failedSuffix,
		failed:     true,
	}
}

// Failed reports whether the result describes a provider failure rather than
// an answer.
func (r ClassificationResult) Failed() bool {
	return r.failed || FailedProvider(r.Provider)
}

// FailedProvider reports whether a provider field marks a failed result.
func FailedProvider(provider string) bool {
	return strings.HasSuffix(provider, failedSuffix)
}

// WithProvider returns a copy of r attributed to provider.
func (r ClassificationResult) WithProvider(provider string) ClassificationResult {
	r.Provider = provider
	return r
}

// ClampConfidence bounds c to [0,1]; NaN becomes 0.
func ClampConfidence(c float64) float64 {
	switch {
	case c != c:
		return 0
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

// ImageResult is what callers outside the core receive for one image.
type ImageResult struct {
	Filename    string   `json:"filename" csv:"filename"`
	Category    Category `json:"category" csv:"category"`
	Confidence  float64  `json:"confidence" csv:"confidence"`
	Reasoning   string   `json:"reasoning" csv:"reasoning"`
	Provider    string   `json:"provider" csv:"provider"`
	Suggestions []string `json:"suggestions" csv:"-"`
}

// NewImageResult attaches the file's basename to a classification result.
func NewImageResult(path string, r ClassificationResult) ImageResult {
	return ImageResult{
		Filename:    filepath.Base(path),
		Category:    r.Category,
		Confidence:  r.Confidence,
		Reasoning:   r.Reasoning,
		Provider:    r.Provider,
		Suggestions: []string{},
	}
}

// FailedImageResult reports a classification that could not be completed so
// callers never silently drop an image.
func FailedImageResult(path string, err error) ImageResult {
	return NewImageResult(path, FailedResult("Categorizer", err))
}

func (r ImageResult) String() string {
	return fmt.Sprintf("%s: %s (%.0f%%) via %s", r.Filename, r.Category, r.Confidence*100, r.Provider)
}
