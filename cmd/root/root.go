// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/stock-categorizer/cmd/common"
	"fjacquet/stock-categorizer/internal/config"
	"fjacquet/stock-categorizer/internal/container"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input       string
	Output      string
	ConfigFile  string
	Credentials string
	LogLevel    string
	JSON        bool
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// SharedFlags holds the persistent flag values.
	SharedFlags = CommonFlags{}

	appConfig    *config.Config
	appContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "stock-categorizer",
		Short: "Classify stock images into Adobe Stock categories.",
		Long: `stock-categorizer assigns each image one of the 21 Adobe Stock categories.

It tries the configured providers in order (Google Cloud Vision, Gemini,
OpenRouter, OpenAI, Hugging Face, Imagga or the on-device classifier) and
keeps the first answer. Images can be classified one at a time, as a
directory batch written to CSV or JSON, or over HTTP.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to stock-categorizer!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initContainer()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer != nil {
				if err := appContainer.Close(); err != nil {
					Log.WithError(err).Warn("Failed to close container")
				}
			}
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input image or directory")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default: ./config.yaml or ~/.stock-categorizer/config.yaml)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.Credentials, "credentials", "", "Credentials file (overrides credentials.file)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	Cmd.PersistentFlags().BoolVar(&SharedFlags.JSON, "json", false, "Print results as JSON")
}

func initContainer() error {
	envFile := config.LoadEnv(nil)

	cfg, err := config.InitializeConfigFromFile(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}
	if SharedFlags.Credentials != "" {
		cfg.Credentials.File = SharedFlags.Credentials
	}

	Log = config.NewLogger(cfg)
	if envFile != "" {
		Log.Debug("Loaded environment file", logging.F(logging.FieldFile, envFile))
	}

	c, err := container.NewContainerWithLogger(cfg, Log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	appConfig = cfg
	appContainer = c
	return nil
}

// GetContainer returns the application container, nil before the root
// command has run.
func GetContainer() *container.Container {
	return appContainer
}

// GetConfig returns the loaded configuration, nil before the root command
// has run.
func GetConfig() *config.Config {
	return appConfig
}

// GetLogger returns the configured logger.
func GetLogger() logging.Logger {
	return Log
}

// Credentials returns the credential list for this invocation: the
// credentials file when it has entries, otherwise the provider keys found
// in the environment.
func Credentials() ([]models.Credential, error) {
	if appContainer == nil {
		return nil, fmt.Errorf("container not initialized")
	}
	return common.ResolveCredentials(appContainer.GetStore(), appConfig.EnvCredentials(), Log)
}
