package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"fjacquet/stock-categorizer/internal/logging"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file in the working directory or its
// parent. Variables already set in the environment win. It reports the file
// loaded, or "" when none was found.
func LoadEnv(logger logging.Logger) string {
	log := logging.OrDiscard(logger)

	for _, envFile := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(envFile); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			log.WithError(err).Warn("Error loading .env file", logging.F(logging.FieldFile, envFile))
			return ""
		}
		log.Debug("Loaded environment variables", logging.F(logging.FieldFile, envFile))
		return envFile
	}
	log.Debug("No .env file found, using environment variables")
	return ""
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}

// NewLogger builds the application logger from the log section.
func NewLogger(c *Config) logging.Logger {
	return logging.NewLogrusAdapter(c.Log.Level, c.Log.Format)
}
