package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/adapters/driven/config/file"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// isolateEnv clears every variable the settings store reads and points
// HOME at a temporary directory.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		file.EnvAPIKey, file.EnvWebhookKey, file.EnvStoreToken, file.EnvStoreURL,
		file.EnvOpenAIAPIKey, file.EnvLLMAPIKey, file.EnvAnthropicAPIKey,
		file.EnvOllamaHost, file.EnvPort, file.EnvHost, file.EnvDocumentsPath,
	} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", t.TempDir())
}

// writeConfig writes a TOML settings file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// setupComponents makes every command use c instead of wiring real services.
func setupComponents(t *testing.T, c *components) *domain.Settings {
	t.Helper()
	var got domain.Settings
	original := newComponents
	newComponents = func(_ context.Context, settings domain.Settings) (*components, error) {
		got = settings
		c.Settings = settings
		return c, nil
	}
	t.Cleanup(func() { newComponents = original })
	return &got
}

// resetFlags clears flag values left over from earlier executions.
func resetFlags() {
	configPath = ""
	envFile = ""
	verbose = false
	askSources = false
	askJSON = false
	indexJSON = false
	serveWatch = false
	configForce = false
	_ = mcpServeCmd.Flags().Set("port", "0")
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	logger.SetOutput(new(bytes.Buffer))
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetVerbose(false)
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
