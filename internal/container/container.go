// Package container provides dependency injection for the stock-categorizer
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/stock-categorizer/internal/batch"
	"fjacquet/stock-categorizer/internal/categorizer"
	"fjacquet/stock-categorizer/internal/config"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/metrics"
	"fjacquet/stock-categorizer/internal/provider"
	"fjacquet/stock-categorizer/internal/provider/local"
	"fjacquet/stock-categorizer/internal/report"
	"fjacquet/stock-categorizer/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation. All fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       *store.CredentialStore
	modelHandle *local.Handle
	registry    *provider.Registry
	categorizer *categorizer.Categorizer
	reports     *report.Writer
}

// NewContainer creates and wires all application dependencies, logging
// through a logger built from the configuration.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, config.NewLogger(cfg))
}

// NewContainerWithLogger is NewContainer with an explicit logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger = logging.OrDiscard(logger)

	policy, err := local.ParsePolicy(cfg.Local.Policy)
	if err != nil {
		return nil, err
	}

	handle, modelName := localModel(cfg.Local)

	registry, err := provider.Build(provider.Settings{
		Timeout:              cfg.Timeout(),
		GoogleVisionEndpoint: cfg.Providers.GoogleVisionEndpoint,
		GeminiEndpoint:       cfg.Providers.GeminiEndpoint,
		OpenRouterBaseURL:    cfg.Providers.OpenRouterBaseURL,
		OpenRouterModels:     cfg.Providers.OpenRouterModels,
		OpenRouterReferer:    cfg.Providers.OpenRouterReferer,
		OpenRouterTitle:      cfg.Providers.OpenRouterTitle,
		OpenAIBaseURL:        cfg.Providers.OpenAIBaseURL,
		OpenAIModels:         cfg.Providers.OpenAIModels,
		HuggingFaceEndpoints: cfg.Providers.HuggingFaceEndpoints,
		HuggingFaceModels:    cfg.Providers.HuggingFaceModels,
		ImaggaBaseURL:        cfg.Providers.ImaggaBaseURL,
		LocalPolicy:          policy,
		LocalTopK:            cfg.Local.TopK,
		LocalModelName:       modelName,
	}, handle, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider registry: %w", err)
	}

	metrics.Register()
	cat := categorizer.NewCategorizer(registry, logger,
		categorizer.WithTimeout(cfg.Timeout()),
		categorizer.WithObserver(metrics.Observer{}),
	)

	logger.Debug("Container initialized",
		logging.F("providers", len(registry.Providers())),
		logging.F("local_policy", string(policy)),
		logging.F("local_model", modelName),
		logging.F("timeout_seconds", cfg.Providers.TimeoutSeconds))

	return &Container{
		logger:      logger,
		config:      cfg,
		store:       store.NewCredentialStore(cfg.Credentials.File, logger),
		modelHandle: handle,
		registry:    registry,
		categorizer: cat,
		reports:     report.NewWriter(cfg.Delimiter(), logger),
	}, nil
}

// localModel picks the ONNX classifier when a model path is configured and the
// metadata labeller otherwise.
func localModel(cfg config.LocalConfig) (*local.Handle, string) {
	if cfg.ModelPath == "" {
		return local.NewHandle(local.LoadMetadataModel), "Metadata"
	}
	name := strings.TrimSuffix(filepath.Base(cfg.ModelPath), filepath.Ext(cfg.ModelPath))
	return local.NewHandle(local.NewONNXLoader(local.ONNXOptions{
		ModelPath:         cfg.ModelPath,
		LabelsPath:        cfg.LabelsPath,
		SharedLibraryPath: cfg.ONNXLibrary,
	})), name
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetCategorizer returns the orchestrator.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetRegistry returns the provider registry.
func (c *Container) GetRegistry() *provider.Registry {
	return c.registry
}

// GetStore returns the credentials file store.
func (c *Container) GetStore() *store.CredentialStore {
	return c.store
}

// GetModelHandle returns the on-device model handle.
func (c *Container) GetModelHandle() *local.Handle {
	return c.modelHandle
}

// GetReportWriter returns the batch report writer.
func (c *Container) GetReportWriter() *report.Writer {
	return c.reports
}

// NewBatchRunner creates a batch runner over the orchestrator using the batch
// section of the configuration. opts.OnResult and opts.Skip are kept.
func (c *Container) NewBatchRunner(opts batch.Options) *batch.Runner {
	opts.Dedup = c.config.Batch.Dedup
	opts.DedupThreshold = c.config.Batch.DedupThreshold
	return batch.NewRunner(c.categorizer, c.logger, opts)
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
