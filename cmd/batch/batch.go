// Package batch handles batch processing of image directories
package batch

import (
	"fmt"
	"io"

	"fjacquet/stock-categorizer/cmd/root"
	"fjacquet/stock-categorizer/internal/batch"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"
	"fjacquet/stock-categorizer/internal/validation"

	"github.com/spf13/cobra"
)

// DefaultOutput is the report written when -o is not given.
const DefaultOutput = "results.csv"

var (
	recursive    bool
	skipExisting bool
	noDedup      bool
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Classify every image in a directory",
	Long: `Classify every image in an input directory and write one report row per image.

The report format follows the output extension: .json writes JSON, anything
else CSV. Images that look identical to one already classified in the run
reuse its result.

Example:
  stock-categorizer batch -i photos/ -o results.csv
  stock-categorizer batch -i photos/ -o results.csv --skip-existing`,
	RunE: batchFunc,
}

func init() {
	Cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	Cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Skip images already classified in the output report")
	Cmd.Flags().BoolVar(&noDedup, "no-dedup", false, "Classify visually identical images separately")
}

func batchFunc(cmd *cobra.Command, args []string) error {
	inputDir := root.SharedFlags.Input
	outputFile := root.SharedFlags.Output
	if inputDir == "" {
		return fmt.Errorf("an input directory must be specified with -i")
	}
	if outputFile == "" {
		outputFile = DefaultOutput
	}
	if err := validation.IsValidOutputFormat(outputFile); err != nil {
		return err
	}

	appContainer := root.GetContainer()
	if appContainer == nil {
		return fmt.Errorf("container not initialized")
	}
	logger := appContainer.GetLogger()
	cfg := appContainer.GetConfig()
	reports := appContainer.GetReportWriter()

	paths, err := batch.ListImages(inputDir, recursive || cfg.Batch.Recursive, models.AcceptedImageExtensions)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		logger.Warn("No images found in input directory", logging.F(logging.FieldFile, inputDir))
		return nil
	}
	logger.Info("Found images for processing", logging.F(logging.FieldCount, len(paths)))

	var previous []models.ImageResult
	skip := map[string]bool{}
	if skipExisting {
		existing, err := reports.ReadFile(outputFile)
		if err != nil {
			return fmt.Errorf("failed to read existing report: %w", err)
		}
		previous, skip = succeeded(existing)
		logger.Info("Loaded existing report", logging.F(logging.FieldCount, len(previous)))
	}

	creds, err := root.Credentials()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opts := batch.Options{Skip: skip, OnResult: progress(out)}
	runner := appContainer.NewBatchRunner(opts)
	if noDedup {
		runner = batch.NewRunner(appContainer.GetCategorizer(), logger, opts)
	}

	summary, runErr := runner.Run(cmd.Context(), paths, creds)

	// Whatever finished is written, even when the run stopped early.
	results := append(previous, summary.Results...)
	if len(results) > 0 {
		if err := reports.WriteFile(outputFile, results); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(out, "Processed %d images: %d categorized, %d uncategorized, %d failed, %d duplicates, %d skipped\n",
		summary.Stats.Total, summary.Stats.Successful, summary.Stats.Uncategorized,
		summary.Stats.Failed, summary.Stats.Duplicates, summary.Skipped)
	return nil
}

func progress(out io.Writer) func(int, models.ImageResult) {
	return func(i int, r models.ImageResult) {
		fmt.Fprintf(out, "[%d] %s\n", i+1, r.String())
	}
}

// succeeded keeps the rows that do not need a retry and indexes them by file
// name.
func succeeded(results []models.ImageResult) ([]models.ImageResult, map[string]bool) {
	kept := make([]models.ImageResult, 0, len(results))
	names := make(map[string]bool, len(results))
	for _, r := range results {
		if models.FailedProvider(r.Provider) {
			continue
		}
		kept = append(kept, r)
		names[r.Filename] = true
	}
	return kept, names
}
