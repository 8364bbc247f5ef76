// Package classify handles single-image classification
package classify

import (
	"fmt"

	"fjacquet/stock-categorizer/cmd/common"
	"fjacquet/stock-categorizer/cmd/root"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"
	"fjacquet/stock-categorizer/internal/validation"

	"github.com/spf13/cobra"
)

// Cmd represents the classify command
var Cmd = &cobra.Command{
	Use:   "classify [image]",
	Short: "Classify one image",
	Long: `Classify one image with the configured providers and print the result.

Credentials are read from the credentials file, or from the provider
environment variables when the file has none.

Example:
  stock-categorizer classify -i photo.jpg
  stock-categorizer classify -i photo.jpg --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: classifyFunc,
}

func classifyFunc(cmd *cobra.Command, args []string) error {
	input := root.SharedFlags.Input
	if input == "" && len(args) > 0 {
		input = args[0]
	}
	if input == "" {
		return fmt.Errorf("an input image must be specified with -i")
	}

	if err := validation.IsValidImagePath(input, models.AcceptedImageExtensions); err != nil {
		return err
	}

	appContainer := root.GetContainer()
	if appContainer == nil {
		return fmt.Errorf("container not initialized")
	}
	logger := appContainer.GetLogger()

	creds, err := root.Credentials()
	if err != nil {
		return err
	}

	logger.Info("Classifying image",
		logging.F(logging.FieldFile, input),
		logging.F(logging.FieldCount, len(creds)))

	result, err := appContainer.GetCategorizer().Categorize(cmd.Context(), input, creds)
	if err != nil {
		return fmt.Errorf("failed to categorize %s: %w", input, err)
	}

	return common.PrintResult(cmd.OutOrStdout(), result, root.SharedFlags.JSON)
}
