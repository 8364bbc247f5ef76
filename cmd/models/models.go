// Package models lists the models a provider key can use
package models

import (
	"fmt"

	"fjacquet/stock-categorizer/cmd/root"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"

	"github.com/spf13/cobra"
)

var providerName string

// Cmd represents the models command
var Cmd = &cobra.Command{
	Use:   "models",
	Short: "List the models a provider key would try, in order",
	Long: `List the models a provider key would try, in rank order.

Only providers that discover models per key support this: Gemini, OpenAI
and OpenRouter. The key is taken from the credentials file or environment.

Example:
  stock-categorizer models --provider gemini`,
	RunE: modelsFunc,
}

func init() {
	Cmd.Flags().StringVarP(&providerName, "provider", "p", "gemini", "Provider name or alias")
}

func modelsFunc(cmd *cobra.Command, args []string) error {
	appContainer := root.GetContainer()
	if appContainer == nil {
		return fmt.Errorf("container not initialized")
	}

	id, err := models.ParseProviderID(providerName)
	if err != nil {
		return err
	}
	discoverer, ok := appContainer.GetRegistry().Discoverer(id)
	if !ok {
		return fmt.Errorf("%s does not discover models", id)
	}

	creds, err := root.Credentials()
	if err != nil {
		return err
	}
	secret := ""
	for _, c := range creds {
		if c.Provider == id && c.Usable() {
			secret = c.Secret
			break
		}
	}
	if secret == "" {
		return fmt.Errorf("no usable %s key found", id)
	}

	candidates, err := discoverer.Candidates(cmd.Context(), secret)
	if err != nil {
		return err
	}
	appContainer.GetLogger().Debug("Discovered models",
		logging.F(logging.FieldProvider, id),
		logging.F(logging.FieldCount, len(candidates)))

	out := cmd.OutOrStdout()
	for i, name := range candidates {
		fmt.Fprintf(out, "%d. %s\n", i+1, name)
	}
	return nil
}
