package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// Environment variables that override file settings.
const (
	EnvAPIKey          = "API_KEY"
	EnvWebhookKey      = "WEBHOOK_KEY"
	EnvStoreToken      = "STORE_TOKEN"
	EnvStoreURL        = "STORE_URL"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvLLMAPIKey       = "LLM_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOllamaHost      = "OLLAMA_HOST"
	EnvPort            = "PORT"
	EnvHost            = "HOST"
	EnvDocumentsPath   = "DOCUMENTS_PATH"
)

// SettingsStore reads settings from a TOML or YAML file and overlays the
// process environment and an optional .env file.
type SettingsStore struct {
	filePath string
	explicit bool
	envFile  string
	lookup   func(string) (string, bool)
}

// Option configures a SettingsStore.
type Option func(*SettingsStore)

// WithEnvFile sets the dotenv file to read. Default: ".env" in the working directory.
// An empty path disables it.
func WithEnvFile(path string) Option {
	return func(s *SettingsStore) {
		s.envFile = path
	}
}

// WithLookupEnv replaces os.LookupEnv, for tests.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(s *SettingsStore) {
		s.lookup = fn
	}
}

// NewSettingsStore creates a settings store.
// If path is empty, defaults to ~/.askdocs/config.toml, and a missing file
// yields defaults. An explicit path must exist.
func NewSettingsStore(path string, opts ...Option) (*SettingsStore, error) {
	s := &SettingsStore{
		filePath: path,
		explicit: path != "",
		envFile:  ".env",
		lookup:   os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		s.filePath = filepath.Join(home, ".askdocs", "config.toml")
	}

	if _, err := format(s.filePath); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// Load returns DefaultSettings overlaid with the file and then the environment.
func (s *SettingsStore) Load() (domain.Settings, error) {
	settings := domain.DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	switch {
	case err == nil:
		if err := decode(s.filePath, data, &settings); err != nil {
			return domain.Settings{}, err
		}
		logger.Debug("settings: loaded %s", s.filePath)
	case errors.Is(err, fs.ErrNotExist) && !s.explicit:
		logger.Debug("settings: %s not found, using defaults", s.filePath)
	default:
		return domain.Settings{}, fmt.Errorf("%w: read settings: %w", domain.ErrConfiguration, err)
	}

	dotenv, err := s.readEnvFile()
	if err != nil {
		return domain.Settings{}, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := s.lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := applyEnv(&settings, lookup); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// Save writes settings in the format given by the file extension.
func (s *SettingsStore) Save(settings domain.Settings) error {
	var (
		data []byte
		err  error
	)
	f, err := format(s.filePath)
	if err != nil {
		return err
	}
	switch f {
	case "yaml":
		data, err = yaml.Marshal(settings)
	default:
		data, err = toml.Marshal(settings)
	}
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return err
	}
	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

func (s *SettingsStore) readEnvFile() (map[string]string, error) {
	if s.envFile == "" {
		return nil, nil
	}
	values, err := godotenv.Read(s.envFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrConfiguration, s.envFile, err)
	}
	logger.Debug("settings: read %d values from %s", len(values), s.envFile)
	return values, nil
}

// format maps a file extension to "toml" or "yaml".
func format(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml", nil
	case ".yaml", ".yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("%w: settings file %q must be .toml, .yaml or .yml", domain.ErrConfiguration, path)
	}
}

func decode(path string, data []byte, settings *domain.Settings) error {
	f, err := format(path)
	if err != nil {
		return err
	}
	if f == "yaml" {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = toml.Unmarshal(data, settings)
	}
	if err != nil {
		return fmt.Errorf("%w: parse %s: %w", domain.ErrConfiguration, path, err)
	}
	return nil
}

// applyEnv overlays environment variables onto settings.
// Provider keys only apply to the provider that uses them. LLM_API_KEY
// applies to whichever LLM provider is configured and wins over the
// provider-specific variables.
func applyEnv(s *domain.Settings, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvAPIKey); ok {
		s.Server.APIKey = v
	}
	if v, ok := get(EnvWebhookKey); ok {
		s.Server.WebhookKey = v
	}
	if v, ok := get(EnvHost); ok {
		s.Server.Host = v
	}
	if v, ok := get(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("%w: %s=%q is not a valid port", domain.ErrConfiguration, EnvPort, v)
		}
		s.Server.Port = port
	}

	if v, ok := get(EnvStoreToken); ok {
		s.Source.Token = v
	}
	if v, ok := get(EnvStoreURL); ok {
		s.Source.BaseURL = v
	}
	if v, ok := get(EnvDocumentsPath); ok {
		s.Source.Path = v
	}

	if v, ok := get(EnvOpenAIAPIKey); ok {
		if s.Embedding.Provider == domain.AIProviderOpenAI {
			s.Embedding.APIKey = v
		}
		if s.LLM.Provider == domain.AIProviderOpenAI {
			s.LLM.APIKey = v
		}
	}
	if v, ok := get(EnvAnthropicAPIKey); ok && s.LLM.Provider == domain.AIProviderAnthropic {
		s.LLM.APIKey = v
	}
	if v, ok := get(EnvLLMAPIKey); ok {
		s.LLM.APIKey = v
	}

	if v, ok := get(EnvOllamaHost); ok {
		host := ollamaURL(v)
		if s.Embedding.Provider == domain.AIProviderOllama {
			s.Embedding.BaseURL = host
		}
		if s.LLM.Provider == domain.AIProviderOllama {
			s.LLM.BaseURL = host
		}
	}
	return nil
}

// ollamaURL accepts OLLAMA_HOST in the forms the ollama CLI does:
// "host:port" or a full URL.
func ollamaURL(v string) string {
	if strings.Contains(v, "://") {
		return strings.TrimRight(v, "/")
	}
	if !strings.Contains(v, ":") {
		v += ":11434"
	}
	return "http://" + v
}
