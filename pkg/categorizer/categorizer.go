// Package categorizer is the public entry point for classifying images into
// Adobe Stock categories from other Go programs.
//
// It wires the same providers as the command-line tool:
//  1. configuration is read from an optional YAML file and STOCKCAT_* variables
//  2. credentials are passed per call, or taken from the provider variables
//  3. each call tries the credentials in order and keeps the first answer
package categorizer

import (
	"context"
	"fmt"

	"fjacquet/stock-categorizer/internal/config"
	"fjacquet/stock-categorizer/internal/container"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"
)

// Credential is one provider key in priority order.
type Credential = models.Credential

// Result is the classification of one image.
type Result = models.ImageResult

// Categorizer classifies image files.
type Categorizer struct {
	container *container.Container
}

// New loads configuration from configFile (empty searches the default
// locations) and builds a Categorizer.
func New(configFile string) (*Categorizer, error) {
	cfg, err := config.InitializeConfigFromFile(configFile)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, nil)
}

// NewWithConfig builds a Categorizer from an already loaded configuration.
// A nil logger logs according to cfg.Log.
func NewWithConfig(cfg *config.Config, logger logging.Logger) (*Categorizer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = config.NewLogger(cfg)
	}
	c, err := container.NewContainerWithLogger(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Categorizer{container: c}, nil
}

// NewCredential returns an enabled credential for the named provider. Names
// and short aliases ("gemini", "openai", "hf", "local") are accepted.
func NewCredential(provider, key string) (Credential, error) {
	id, err := models.ParseProviderID(provider)
	if err != nil {
		return Credential{}, err
	}
	return models.NewCredential(id, key), nil
}

// Classify classifies the image at path with creds.
func (c *Categorizer) Classify(ctx context.Context, path string, creds []Credential) (Result, error) {
	return c.container.GetCategorizer().Categorize(ctx, path, creds)
}

// ClassifyWithEnv classifies the image at path with the provider keys found
// in the environment.
func (c *Categorizer) ClassifyWithEnv(ctx context.Context, path string) (Result, error) {
	return c.Classify(ctx, path, c.container.GetConfig().EnvCredentials())
}

// Categories returns the taxonomy in canonical order.
func Categories() []string {
	cats := models.Categories()
	out := make([]string, len(cats))
	for i, cat := range cats {
		out[i] = string(cat)
	}
	return out
}

// Close releases resources.
func (c *Categorizer) Close() error {
	return c.container.Close()
}
