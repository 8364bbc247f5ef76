// Package batch classifies many images in one run.
//
// Images are processed sequentially in the order given. With deduplication
// enabled, an image whose perceptual hash is close to an earlier image's
// reuses that result instead of calling the providers again.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"fjacquet/stock-categorizer/internal/imagefile"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"
	"fjacquet/stock-categorizer/internal/providererror"

	"github.com/corona10/goimagehash"
)

// Classifier classifies one image file.
type Classifier interface {
	ClassifyImage(ctx context.Context, imagePath string, creds []models.Credential) (models.ClassificationResult, error)
}

// Options configures a Runner.
type Options struct {
	Dedup          bool
	DedupThreshold int
	// Skip lists file names (basenames) already classified.
	Skip map[string]bool
	// OnResult is called after every image, in order.
	OnResult func(index int, r models.ImageResult)
}

// Summary is the outcome of a run.
type Summary struct {
	Results []models.ImageResult
	Stats   models.CategorizationStats
	Skipped int
}

// Runner classifies images one after another.
type Runner struct {
	classifier Classifier
	logger     logging.Logger
	opts       Options
}

// NewRunner creates a Runner.
func NewRunner(classifier Classifier, logger logging.Logger, opts Options) *Runner {
	return &Runner{classifier: classifier, logger: logging.OrDiscard(logger), opts: opts}
}

// ListImages returns the accepted image files under dir, sorted by path.
func ListImages(dir string, recursive bool, exts []string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path is not a directory: %s", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if imagefile.HasAcceptedExtension(d.Name(), exts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing images: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// Run classifies paths with creds. Per-image failures are reported as failed
// results and do not stop the run. Missing credentials and cancellation stop
// it and return the results so far.
func (r *Runner) Run(ctx context.Context, paths []string, creds []models.Credential) (Summary, error) {
	summary := Summary{Results: make([]models.ImageResult, 0, len(paths))}

	var dedup *dedupIndex
	if r.opts.Dedup {
		dedup = newDedupIndex(r.opts.DedupThreshold)
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("batch cancelled: %w", err)
		}

		name := filepath.Base(path)
		if r.opts.Skip[name] {
			summary.Skipped++
			r.logger.Debug("Skipping already classified image", logging.F(logging.FieldFile, name))
			continue
		}

		log := r.logger.WithField(logging.FieldFile, name)

		var index int
		var reused bool
		hash := r.hashOf(dedup, path)
		if dedup != nil {
			index, reused = dedup.match(hash)
		}

		var res models.ImageResult
		if reused {
			res = duplicateOf(path, summary.Results[index])
			summary.Stats.RecordDuplicate()
			log.Info("Reusing result of identical image", logging.F("duplicate_of", summary.Results[index].Filename))
		} else {
			classified, err := r.classifier.ClassifyImage(ctx, path, creds)
			if err != nil {
				if errors.Is(err, providererror.ErrNoCredentials) {
					return summary, err
				}
				if ctx.Err() != nil {
					return summary, fmt.Errorf("batch cancelled: %w", ctx.Err())
				}
				log.WithError(err).Warn("Image could not be classified")
				res = models.FailedImageResult(path, err)
			} else {
				res = models.NewImageResult(path, classified)
				if dedup != nil {
					dedup.add(hash, len(summary.Results))
				}
			}
		}

		summary.Results = append(summary.Results, res)
		summary.Stats.Record(res)
		if r.opts.OnResult != nil {
			r.opts.OnResult(len(summary.Results)-1, res)
		}
	}

	summary.Stats.LogSummary(r.logger, "batch")
	return summary, nil
}

func (r *Runner) hashOf(dedup *dedupIndex, path string) *goimagehash.ImageHash {
	if dedup == nil {
		return nil
	}
	img, err := imagefile.Load(path)
	if err != nil {
		return nil
	}
	decoded, _, err := img.Decode()
	if err != nil {
		r.logger.Debug("Image not decodable, dedup skipped", logging.F(logging.FieldFile, img.Name()))
		return nil
	}
	return dedup.hash(decoded)
}

func duplicateOf(path string, original models.ImageResult) models.ImageResult {
	dup := original
	dup.Filename = filepath.Base(path)
	dup.Reasoning = fmt.Sprintf("%s (Duplicate of %s)", original.Reasoning, original.Filename)
	dup.Suggestions = []string{}
	return dup
}
