// Package categorizer classifies images into the stock-photo taxonomy.
//
// A Categorizer walks the caller's credentials in order and hands the image to
// the adapter of each credential's provider until one answers:
//  1. blank or disabled credentials are skipped
//  2. the first adapter that returns a non-failed result wins
//  3. failures are remembered and the last one is reported if all fail
//
// The package also holds the pieces shared by adapters: the label-to-category
// mapper, the generative prompt and its response parser.
package categorizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fjacquet/stock-categorizer/internal/imagefile"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"
	"fjacquet/stock-categorizer/internal/providererror"
)

// Categorizer is the sequential fallback controller across credentials.
type Categorizer struct {
	adapters Resolver
	logger   logging.Logger
	timeout  time.Duration
	observer AttemptObserver
}

// Option configures a Categorizer.
type Option func(*Categorizer)

// WithTimeout bounds every adapter call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Categorizer) { c.timeout = d }
}

// WithObserver reports every attempt to o.
func WithObserver(o AttemptObserver) Option {
	return func(c *Categorizer) { c.observer = o }
}

// NewCategorizer creates a Categorizer dispatching through adapters.
func NewCategorizer(adapters Resolver, logger logging.Logger, opts ...Option) *Categorizer {
	c := &Categorizer{
		adapters: adapters,
		logger:   logging.OrDiscard(logger),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// outcome is the accumulator folded over the credential list.
type outcome struct {
	result   *models.ClassificationResult
	lastErr  error
	tried    int
	attempts Attempts
}

func (o outcome) done() bool {
	return o.result != nil
}

// Categorize classifies the image at imagePath and attaches its file name.
func (c *Categorizer) Categorize(ctx context.Context, imagePath string, creds []models.Credential) (models.ImageResult, error) {
	res, err := c.ClassifyImage(ctx, imagePath, creds)
	if err != nil {
		return models.ImageResult{}, err
	}
	return models.NewImageResult(imagePath, res), nil
}

// ClassifyImage tries creds in order and returns the first answer. It fails
// with providererror.ErrNoCredentials when no credential is usable, and with a
// *providererror.ExhaustedError carrying the last failure when every usable
// credential failed.
func (c *Categorizer) ClassifyImage(ctx context.Context, imagePath string, creds []models.Credential) (models.ClassificationResult, error) {
	if !anyUsable(creds) {
		return models.ClassificationResult{}, providererror.ErrNoCredentials
	}

	img, err := imagefile.Load(imagePath)
	if err != nil {
		return models.ClassificationResult{}, err
	}

	log := c.logger.WithField(logging.FieldFile, img.Name())

	acc := outcome{}
	for _, cred := range creds {
		if acc.done() {
			break
		}
		if err := ctx.Err(); err != nil {
			return models.ClassificationResult{}, fmt.Errorf("classification of %s cancelled: %w", img.Name(), err)
		}
		acc = c.step(ctx, log, img, acc, cred)
	}

	log.Debug("Credential attempts", logging.F("attempts", acc.attempts.Summary()))

	if acc.done() {
		return *acc.result, nil
	}
	if acc.tried == 0 {
		if acc.lastErr != nil {
			return models.ClassificationResult{}, fmt.Errorf("%w: %v", providererror.ErrNoCredentials, acc.lastErr)
		}
		return models.ClassificationResult{}, providererror.ErrNoCredentials
	}
	exhausted := &providererror.ExhaustedError{Attempts: acc.tried, Last: acc.lastErr}
	log.WithError(exhausted).Warn("All credentials failed",
		logging.F(logging.FieldCount, acc.tried),
		logging.F("attempt_errors", errors.Join(acc.attempts.Errors()...).Error()))
	return models.ClassificationResult{}, exhausted
}

// step tries one credential and folds its outcome into acc.
func (c *Categorizer) step(ctx context.Context, log logging.Logger, img *imagefile.Image, acc outcome, cred models.Credential) outcome {
	if !cred.Usable() {
		log.Debug("Skipping unusable credential", logging.F(logging.FieldProvider, cred.Provider))
		return acc
	}

	adapter, ok := c.adapters.Adapter(cred.Provider)
	if !ok {
		err := fmt.Errorf("unsupported provider %q", cred.Provider)
		log.Warn("No adapter for provider", logging.F(logging.FieldProvider, cred.Provider))
		c.observe(cred.Provider, OutcomeUnsupported, 0)
		acc.attempts = append(acc.attempts, Attempt{Provider: cred.Provider, Outcome: OutcomeUnsupported, Err: err})
		acc.lastErr = err
		return acc
	}

	plog := log.WithFields(
		logging.F(logging.FieldProvider, cred.Provider),
		logging.F(logging.FieldKey, cred.MaskedSecret()),
	)
	plog.Info("Trying provider")

	callCtx, cancel := c.attemptContext(ctx)
	start := time.Now()
	res, err := adapter.Classify(callCtx, img, cred.Secret)
	elapsed := time.Since(start)
	cancel()

	acc.tried++
	at := Attempt{Provider: cred.Provider, Err: err, Elapsed: elapsed}
	fields := []logging.Field{logging.F(logging.FieldDuration, elapsed.Milliseconds())}

	switch {
	case err != nil:
		at.Outcome = OutcomeError
		acc.lastErr = err
		plog.WithError(err).Warn("Provider returned an error", fields...)
	case res.Failed():
		at.Outcome = OutcomeFailed
		acc.lastErr = errors.New(res.Reasoning)
		at.Err = acc.lastErr
		plog.Warn("Provider failed", append(fields, logging.F(logging.FieldReason, res.Reasoning))...)
	default:
		at.Outcome = OutcomeSuccess
		if res.Category == models.CategoryUnable {
			at.Outcome = OutcomeUnanswered
		}
		res.Confidence = models.ClampConfidence(res.Confidence)
		acc.result = &res
		plog.Info("Image classified", append(fields,
			logging.F(logging.FieldCategory, res.Category),
			logging.F(logging.FieldConfidence, res.Confidence),
		)...)
	}

	c.observe(cred.Provider, at.Outcome, elapsed.Seconds())
	acc.attempts = append(acc.attempts, at)
	return acc
}

func (c *Categorizer) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Categorizer) observe(provider models.ProviderID, outcome string, seconds float64) {
	if c.observer != nil {
		c.observer.ObserveAttempt(provider, outcome, seconds)
	}
}

func anyUsable(creds []models.Credential) bool {
	for _, cred := range creds {
		if cred.Usable() {
			return true
		}
	}
	return false
}
