// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/stock-categorizer/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. STOCKCAT_LOG_LEVEL.
const EnvPrefix = "STOCKCAT"

// Config represents the complete application configuration
type Config struct {
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
	CSV         CSVConfig         `mapstructure:"csv" yaml:"csv"`
	Providers   ProvidersConfig   `mapstructure:"providers" yaml:"providers"`
	Local       LocalConfig       `mapstructure:"local" yaml:"local"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Batch       BatchConfig       `mapstructure:"batch" yaml:"batch"`
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CSVConfig configures report output.
type CSVConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// ProvidersConfig holds provider endpoints, model lists and keys.
type ProvidersConfig struct {
	// Order is the credential order used when keys come from the environment.
	Order          []string `mapstructure:"order" yaml:"order"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`

	GoogleVisionEndpoint string   `mapstructure:"google_vision_endpoint" yaml:"google_vision_endpoint"`
	GeminiEndpoint       string   `mapstructure:"gemini_endpoint" yaml:"gemini_endpoint"`
	OpenRouterBaseURL    string   `mapstructure:"openrouter_base_url" yaml:"openrouter_base_url"`
	OpenRouterModels     []string `mapstructure:"openrouter_models" yaml:"openrouter_models"`
	OpenRouterReferer    string   `mapstructure:"openrouter_referer" yaml:"openrouter_referer"`
	OpenRouterTitle      string   `mapstructure:"openrouter_title" yaml:"openrouter_title"`
	OpenAIBaseURL        string   `mapstructure:"openai_base_url" yaml:"openai_base_url"`
	OpenAIModels         []string `mapstructure:"openai_models" yaml:"openai_models"`
	HuggingFaceEndpoints []string `mapstructure:"huggingface_endpoints" yaml:"huggingface_endpoints"`
	HuggingFaceModels    []string `mapstructure:"huggingface_models" yaml:"huggingface_models"`
	ImaggaBaseURL        string   `mapstructure:"imagga_base_url" yaml:"imagga_base_url"`

	Keys ProviderKeys `mapstructure:"keys" yaml:"-"` // never serialize keys
}

// ProviderKeys are read from the conventional provider environment variables.
type ProviderKeys struct {
	GoogleVision string `mapstructure:"google_vision"`
	Gemini       string `mapstructure:"gemini"`
	OpenRouter   string `mapstructure:"openrouter"`
	OpenAI       string `mapstructure:"openai"`
	HuggingFace  string `mapstructure:"huggingface"`
	Imagga       string `mapstructure:"imagga"`
}

// LocalConfig configures the on-device path.
type LocalConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Policy  string `mapstructure:"policy" yaml:"policy"`
	TopK    int    `mapstructure:"top_k" yaml:"top_k"`
	// ModelPath selects an ONNX classifier; empty uses embedded metadata.
	ModelPath   string `mapstructure:"model_path" yaml:"model_path"`
	LabelsPath  string `mapstructure:"labels_path" yaml:"labels_path"`
	ONNXLibrary string `mapstructure:"onnx_library" yaml:"onnx_library"`
}

// ServerConfig configures the upload server.
type ServerConfig struct {
	Addr        string `mapstructure:"addr" yaml:"addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	UploadDir   string `mapstructure:"upload_dir" yaml:"upload_dir"`
}

// BatchConfig configures directory runs.
type BatchConfig struct {
	Dedup          bool `mapstructure:"dedup" yaml:"dedup"`
	DedupThreshold int  `mapstructure:"dedup_threshold" yaml:"dedup_threshold"`
	Recursive      bool `mapstructure:"recursive" yaml:"recursive"`
}

// CredentialsConfig points at the credentials file.
type CredentialsConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// keyEnvVars maps provider key settings to their conventional variables.
var keyEnvVars = map[string]string{
	"providers.keys.google_vision": "GOOGLE_VISION_API_KEY",
	"providers.keys.gemini":        "GEMINI_API_KEY",
	"providers.keys.openrouter":    "OPENROUTER_API_KEY",
	"providers.keys.openai":        "OPENAI_API_KEY",
	"providers.keys.huggingface":   "HUGGINGFACE_API_KEY",
	"providers.keys.imagga":        "IMAGGA_API_KEY",
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return InitializeConfigFromFile("")
}

// InitializeConfigFromFile is InitializeConfig reading an explicit config
// file instead of searching the standard locations. An empty path searches.
func InitializeConfigFromFile(path string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.stock-categorizer")
		v.AddConfigPath(".stock-categorizer")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless explicit)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. Provider keys come from their usual, unprefixed variables
	for key, env := range keyEnvVars {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	order := make([]string, 0, len(models.AllProviders()))
	for _, id := range models.AllProviders() {
		order = append(order, string(id))
	}
	v.SetDefault("providers.order", order)
	v.SetDefault("providers.timeout_seconds", 60)
	v.SetDefault("providers.openrouter_referer", "http://localhost:5173")
	v.SetDefault("providers.openrouter_title", "Adobe Stock Categorizer")

	v.SetDefault("local.enabled", true)
	v.SetDefault("local.policy", "cascade")
	v.SetDefault("local.top_k", 5)
	v.SetDefault("local.model_path", "")
	v.SetDefault("local.labels_path", "")
	v.SetDefault("local.onnx_library", "")

	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.max_upload_mb", 100)
	v.SetDefault("server.upload_dir", "")

	v.SetDefault("batch.dedup", true)
	v.SetDefault("batch.dedup_threshold", 10)
	v.SetDefault("batch.recursive", false)

	v.SetDefault("credentials.file", "credentials.yaml")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.Providers.TimeoutSeconds < 1 || config.Providers.TimeoutSeconds > 300 {
		return fmt.Errorf("providers.timeout_seconds must be between 1 and 300, got: %d", config.Providers.TimeoutSeconds)
	}

	for _, name := range config.Providers.Order {
		if _, err := models.ParseProviderID(name); err != nil {
			return fmt.Errorf("providers.order: %w", err)
		}
	}

	switch strings.ToLower(config.Local.Policy) {
	case "cascade", "mapper":
	default:
		return fmt.Errorf("local.policy must be 'cascade' or 'mapper', got: %s", config.Local.Policy)
	}

	if config.Local.TopK < 1 || config.Local.TopK > 20 {
		return fmt.Errorf("local.top_k must be between 1 and 20, got: %d", config.Local.TopK)
	}
	if config.Local.ModelPath != "" && config.Local.LabelsPath == "" {
		return fmt.Errorf("local.labels_path is required when local.model_path is set")
	}

	if config.Server.MaxUploadMB < 1 || config.Server.MaxUploadMB > 1024 {
		return fmt.Errorf("server.max_upload_mb must be between 1 and 1024, got: %d", config.Server.MaxUploadMB)
	}

	if config.Batch.DedupThreshold < 1 || config.Batch.DedupThreshold > 64 {
		return fmt.Errorf("batch.dedup_threshold must be between 1 and 64, got: %d", config.Batch.DedupThreshold)
	}

	return nil
}

// Timeout returns the per-attempt provider timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Providers.TimeoutSeconds) * time.Second
}

// Delimiter returns the CSV delimiter rune.
func (c *Config) Delimiter() rune {
	r := []rune(c.CSV.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
}

// MaxUploadBytes returns the upload size limit.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) * 1024 * 1024
}

// EnvCredentials builds the credential list from the provider keys in
// Providers.Order. Providers without a key are left out; the local provider
// is included when enabled.
func (c *Config) EnvCredentials() []models.Credential {
	keys := map[models.ProviderID]string{
		models.ProviderGoogleVision: c.Providers.Keys.GoogleVision,
		models.ProviderGemini:       c.Providers.Keys.Gemini,
		models.ProviderOpenRouter:   c.Providers.Keys.OpenRouter,
		models.ProviderOpenAI:       c.Providers.Keys.OpenAI,
		models.ProviderHuggingFace:  c.Providers.Keys.HuggingFace,
		models.ProviderImagga:       c.Providers.Keys.Imagga,
	}

	var creds []models.Credential
	for _, name := range c.Providers.Order {
		id, err := models.ParseProviderID(name)
		if err != nil {
			continue
		}
		if id == models.ProviderLocal {
			if c.Local.Enabled {
				creds = append(creds, models.NewCredential(id, ""))
			}
			continue
		}
		if key := strings.TrimSpace(keys[id]); key != "" {
			creds = append(creds, models.NewCredential(id, key))
		}
	}
	return creds
}
