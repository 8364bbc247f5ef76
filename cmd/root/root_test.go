package root_test

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/stock-categorizer/cmd/root"
	"fjacquet/stock-categorizer/internal/models"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	root.Init()
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "stock-categorizer", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "Adobe Stock categories")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
}

func TestRootCommand_Flags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
	}{
		{name: "input", shorthand: "i"},
		{name: "output", shorthand: "o"},
		{name: "config"},
		{name: "credentials"},
		{name: "log-level"},
		{name: "json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := root.Cmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
		})
	}
}

func TestRootCommand_Run(t *testing.T) {
	assert.NotPanics(t, func() {
		root.Cmd.Run(&cobra.Command{}, []string{})
	})
}

func TestPersistentPreRun_BuildsContainer(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	credPath := filepath.Join(dir, "credentials.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: warn\n"), 0600))
	require.NoError(t, os.WriteFile(credPath, []byte("credentials:\n  - provider: openai\n    key: sk-test\n"), 0600))

	saved := root.SharedFlags
	t.Cleanup(func() { root.SharedFlags = saved })
	root.SharedFlags.ConfigFile = cfgPath
	root.SharedFlags.Credentials = credPath
	root.SharedFlags.LogLevel = "error"

	require.NoError(t, root.Cmd.PersistentPreRunE(root.Cmd, nil))
	require.NotNil(t, root.GetContainer())
	assert.Equal(t, "error", root.GetConfig().Log.Level)

	creds, err := root.Credentials()
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, models.ProviderOpenAI, creds[0].Provider)
}

func TestPersistentPreRun_MissingConfig(t *testing.T) {
	saved := root.SharedFlags
	t.Cleanup(func() { root.SharedFlags = saved })
	root.SharedFlags.ConfigFile = filepath.Join(t.TempDir(), "absent.yaml")

	assert.Error(t, root.Cmd.PersistentPreRunE(root.Cmd, nil))
}
