package cli

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestSecretStatus(t *testing.T) {
	assert.Equal(t, "(not set)", secretStatus(""))
	assert.Equal(t, "supe...cret", secretStatus("super-long-secret"))
}

func TestConfigInit_WritesDefaults(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "askdocs", "config.toml")

	out, err := execute(t, "", "config", "init", "--config", path, "--env-file", "")

	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default settings to "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[server]")
	assert.Contains(t, string(data), "[embedding]")
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, "[server]\nport = 1234\n")

	_, err := execute(t, "", "config", "init", "--config", path, "--env-file", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "", "config", "init", "--force", "--config", path, "--env-file", "")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "1234")
}

func TestConfigInit_YAML(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	_, err := execute(t, "", "config", "init", "--config", path, "--env-file", "")

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "server:")
}

func TestConfigShow_MasksSecrets(t *testing.T) {
	isolateEnv(t)
	t.Setenv("API_KEY", "api-key-0123456789")
	t.Setenv("OPENAI_API_KEY", "sk-abcdefghijklmnop")
	path := writeConfig(t, `
[embedding]
provider = "openai"
model = "text-embedding-3-small"
`)

	out, err := execute(t, "", "config", "show", "--config", path, "--env-file", "")

	require.NoError(t, err)
	assert.Contains(t, out, "API Key: api-...6789")
	assert.Contains(t, out, "API Key: sk-a...mnop")
	assert.NotContains(t, out, "api-key-0123456789")
	assert.NotContains(t, out, "sk-abcdefghijklmnop")
	assert.Contains(t, out, "Webhook Key: (not set)")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestConfigShow_IsDefaultSubcommand(t *testing.T) {
	isolateEnv(t)

	out, err := execute(t, "", "config", "--config", writeConfig(t, ""), "--env-file", "")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "API_KEY is not set")
}

func TestConfigCheck_ProvidersReachable(t *testing.T) {
	isolateEnv(t)
	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer ollama.Close()
	t.Setenv("OLLAMA_HOST", ollama.URL)

	out, err := execute(t, "", "config", "check", "--config", writeConfig(t, ""), "--env-file", "")

	require.NoError(t, err)
	assert.Contains(t, out, "ok    embedding")
	assert.Contains(t, out, "ok    llm")
	assert.Contains(t, out, "API_KEY is not set")
	assert.Contains(t, out, "All providers reachable.")
}

func TestConfigCheck_ProviderDown(t *testing.T) {
	isolateEnv(t)
	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer ollama.Close()
	t.Setenv("OLLAMA_HOST", ollama.URL)
	t.Setenv("API_KEY", "secret")

	out, err := execute(t, "", "config", "check", "--config", writeConfig(t, ""), "--env-file", "")

	assert.EqualError(t, err, "provider check failed")
	assert.Contains(t, out, "FAIL  embedding")
	assert.Contains(t, out, "model loading")
}

func TestConfigCheck_InvalidSettings(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, "[cache]\nbackend = \"redis\"\n")

	_, err := execute(t, "", "config", "check", "--config", path, "--env-file", "")

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
