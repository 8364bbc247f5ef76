package container

import (
	"context"
	"path/filepath"
	"testing"

	"fjacquet/stock-categorizer/internal/batch"
	"fjacquet/stock-categorizer/internal/config"
	"fjacquet/stock-categorizer/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Log:         config.LogConfig{Level: "info", Format: "text"},
		CSV:         config.CSVConfig{Delimiter: ";"},
		Providers:   config.ProvidersConfig{TimeoutSeconds: 30},
		Local:       config.LocalConfig{Enabled: true, Policy: "cascade", TopK: 5},
		Server:      config.ServerConfig{Addr: ":5000", MaxUploadMB: 100},
		Batch:       config.BatchConfig{Dedup: true, DedupThreshold: 10},
		Credentials: config.CredentialsConfig{File: "credentials.yaml"},
	}
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name        string
		config      *config.Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "nil config",
			config:      nil,
			expectError: true,
			errorMsg:    "configuration cannot be nil",
		},
		{
			name:   "valid config",
			config: testConfig(),
		},
		{
			name: "unknown local policy",
			config: func() *config.Config {
				c := testConfig()
				c.Local.Policy = "mobilenet"
				return c
			}(),
			expectError: true,
			errorMsg:    "unknown local policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container, err := NewContainer(tt.config)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, container)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, container)
			assert.NotNil(t, container.GetLogger())
			assert.Equal(t, tt.config, container.GetConfig())
			assert.NotNil(t, container.GetCategorizer())
			assert.NotNil(t, container.GetStore())
			assert.NotNil(t, container.GetReportWriter())
			assert.NotNil(t, container.GetModelHandle())
			assert.Empty(t, container.GetRegistry().Missing())
			assert.NoError(t, container.Close())
		})
	}
}

func TestNewContainerWithLogger(t *testing.T) {
	logger := logging.NewMockLogger()
	c, err := NewContainerWithLogger(testConfig(), logger)
	require.NoError(t, err)

	assert.Same(t, logger, c.GetLogger())
	assert.True(t, logger.HasEntry("DEBUG", "Container initialized"))
	assert.Equal(t, "credentials.yaml", c.GetStore().File)
	assert.False(t, c.GetModelHandle().Loaded())
}

func TestNewBatchRunner(t *testing.T) {
	c, err := NewContainerWithLogger(testConfig(), nil)
	require.NoError(t, err)
	assert.NotNil(t, c.NewBatchRunner(batch.Options{}))
}

func TestLocalModel(t *testing.T) {
	handle, name := localModel(config.LocalConfig{})
	assert.Equal(t, "Metadata", name)
	_, err := handle.Model(context.Background())
	require.NoError(t, err)

	handle, name = localModel(config.LocalConfig{
		ModelPath:  filepath.Join(t.TempDir(), "mobilenetv2-7.onnx"),
		LabelsPath: "imagenet_classes.txt",
	})
	assert.Equal(t, "mobilenetv2-7", name)
	_, err = handle.Model(context.Background())
	assert.ErrorContains(t, err, "mobilenetv2-7.onnx")
	assert.False(t, handle.Loaded())
}
