package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// SourceType identifies the backend documents are read from.
type SourceType string

// Available document sources.
const (
	SourceFilesystem SourceType = "filesystem"
	SourceHTTP       SourceType = "http"
	SourceGCS        SourceType = "gcs"
	SourceGitHub     SourceType = "github"
)

// IsValid returns true if the source type is recognised.
func (t SourceType) IsValid() bool {
	switch t {
	case SourceFilesystem, SourceHTTP, SourceGCS, SourceGitHub:
		return true
	default:
		return false
	}
}

// IsRemote returns true if documents are fetched over the network.
func (t SourceType) IsRemote() bool {
	return t == SourceHTTP || t == SourceGCS || t == SourceGitHub
}

// FailurePolicy decides what a failed download does to the build.
type FailurePolicy string

// Available failure policies.
const (
	// FailureSkip logs the failure and continues with the other files.
	FailureSkip FailurePolicy = "skip"

	// FailureAbort stops the build at the first failed file.
	FailureAbort FailurePolicy = "abort"
)

// CacheBackend selects where embedding vectors are cached.
type CacheBackend string

// Available cache backends.
const (
	CacheNone   CacheBackend = "none"
	CacheMemory CacheBackend = "memory"
	CacheSQLite CacheBackend = "sqlite"
)

// ServerSettings configures the HTTP front end.
type ServerSettings struct {
	Host string `toml:"host" yaml:"host"`
	Port int    `toml:"port" yaml:"port"`

	// APIKey guards every route except /health and /wakeup.
	APIKey string `toml:"api_key" yaml:"api_key"`

	// WebhookKey guards /wakeup.
	WebhookKey string `toml:"webhook_key" yaml:"webhook_key"`

	// AllowedOrigin is returned in Access-Control-Allow-Origin.
	AllowedOrigin string `toml:"allowed_origin" yaml:"allowed_origin"`

	// RequestTimeoutSeconds bounds a single request end to end.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds" yaml:"request_timeout_seconds"`
}

// Addr returns the listen address.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SourceSettings configures where documents come from.
type SourceSettings struct {
	Type SourceType `toml:"type" yaml:"type"`

	// Path is the root directory for the filesystem source.
	Path string `toml:"path" yaml:"path"`

	// BaseURL is the object store endpoint for the http source.
	BaseURL string `toml:"base_url" yaml:"base_url"`

	// Bucket locates objects for the gcs source. Prefix narrows gcs and github listings.
	Bucket string `toml:"bucket" yaml:"bucket"`
	Prefix string `toml:"prefix" yaml:"prefix"`

	// Repository is "owner/name" for the github source, Ref its branch or tag.
	Repository string `toml:"repository" yaml:"repository"`
	Ref        string `toml:"ref" yaml:"ref"`

	// Token is the bearer credential for remote sources.
	Token string `toml:"token" yaml:"token"`

	// UseDefaultCredentials lets the gcs source use application default credentials.
	UseDefaultCredentials bool `toml:"use_default_credentials" yaml:"use_default_credentials"`

	// Files is the fixed list of document names. Empty means enumerate.
	Files []string `toml:"files" yaml:"files"`

	TimeoutSeconds    int     `toml:"timeout_seconds" yaml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `toml:"burst" yaml:"burst"`
	MaxBytes          int64   `toml:"max_bytes" yaml:"max_bytes"`

	OnError FailurePolicy `toml:"on_error" yaml:"on_error"`
}

// ChunkingSettings configures the chunker, in tokens.
type ChunkingSettings struct {
	Size    int `toml:"size" yaml:"size"`
	Overlap int `toml:"overlap" yaml:"overlap"`
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `toml:"provider" yaml:"provider"`

	// Model is the embedding model name.
	Model string `toml:"model" yaml:"model"`

	// BaseURL is the API endpoint.
	BaseURL string `toml:"base_url" yaml:"base_url"`

	// APIKey is the API key (for OpenAI).
	APIKey string `toml:"api_key" yaml:"api_key"`

	// Dimensions overrides the known vector size of Model.
	Dimensions int `toml:"dimensions" yaml:"dimensions"`

	// BatchSize is the number of chunks embedded per request.
	BatchSize int `toml:"batch_size" yaml:"batch_size"`

	// RequestsPerSecond limits embedding calls during a build. Zero is unlimited.
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if e.Provider != AIProviderOllama && e.Provider != AIProviderOpenAI {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// Namespace identifies the vector space produced by this configuration.
// Cached vectors are only reused within the same namespace.
func (e EmbeddingSettings) Namespace() string {
	return string(e.Provider) + "/" + e.Model
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider `toml:"provider" yaml:"provider"`

	// Model is the LLM model name.
	Model string `toml:"model" yaml:"model"`

	// BaseURL is the API endpoint.
	BaseURL string `toml:"base_url" yaml:"base_url"`

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string `toml:"api_key" yaml:"api_key"`

	// TimeoutSeconds bounds one completion call.
	TimeoutSeconds int `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// CacheSettings configures the embedding cache.
type CacheSettings struct {
	Backend CacheBackend `toml:"backend" yaml:"backend"`

	// Dir holds the SQLite database. Empty means ~/.askdocs/data.
	Dir string `toml:"dir" yaml:"dir"`
}

// RetrievalSettings configures the retriever.
type RetrievalSettings struct {
	TopK int `toml:"top_k" yaml:"top_k"`
}

// LogSettings configures logging.
type LogSettings struct {
	Verbose bool `toml:"verbose" yaml:"verbose"`
}

// Settings holds all application settings.
type Settings struct {
	Server    ServerSettings    `toml:"server" yaml:"server"`
	Source    SourceSettings    `toml:"source" yaml:"source"`
	Chunking  ChunkingSettings  `toml:"chunking" yaml:"chunking"`
	Embedding EmbeddingSettings `toml:"embedding" yaml:"embedding"`
	LLM       LLMSettings       `toml:"llm" yaml:"llm"`
	Cache     CacheSettings     `toml:"cache" yaml:"cache"`
	Retrieval RetrievalSettings `toml:"retrieval" yaml:"retrieval"`
	Log       LogSettings       `toml:"log" yaml:"log"`
}

// Defaults for Settings.
const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 10000
	DefaultRequestTimeout = 120
	DefaultChunkSize      = 350
	DefaultChunkOverlap   = 150
	DefaultTopK           = 4
	DefaultBatchSize      = 32
	DefaultOllamaURL      = "http://localhost:11434"
	DefaultOllamaModel    = "llama3.1:8b"
	DefaultSourceTimeout  = 60
	DefaultSourceRate     = 5.0
	DefaultSourceBurst    = 10
	DefaultMaxBytes       = 50 << 20
)

// DefaultSettings returns settings with sensible defaults.
// Credentials are left empty and must come from the file or environment.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host:                  DefaultHost,
			Port:                  DefaultPort,
			AllowedOrigin:         "*",
			RequestTimeoutSeconds: DefaultRequestTimeout,
		},
		Source: SourceSettings{
			Type:              SourceFilesystem,
			Path:              "documents",
			TimeoutSeconds:    DefaultSourceTimeout,
			RequestsPerSecond: DefaultSourceRate,
			Burst:             DefaultSourceBurst,
			MaxBytes:          DefaultMaxBytes,
			OnError:           FailureSkip,
		},
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOllama,
			Model:     DefaultOllamaModel,
			BaseURL:   DefaultOllamaURL,
			BatchSize: DefaultBatchSize,
		},
		LLM: LLMSettings{
			Provider:       AIProviderOllama,
			Model:          DefaultOllamaModel,
			BaseURL:        DefaultOllamaURL,
			TimeoutSeconds: DefaultRequestTimeout,
		},
		Cache: CacheSettings{
			Backend: CacheSQLite,
		},
		Retrieval: RetrievalSettings{
			TopK: DefaultTopK,
		},
	}
}

// Validate checks the settings needed to build an index and answer questions.
// Every failure wraps ErrConfiguration.
func (s *Settings) Validate() error {
	if err := s.Source.validate(); err != nil {
		return err
	}
	if !s.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured", ErrConfiguration, s.Embedding.Provider)
	}
	if !s.LLM.IsConfigured() {
		return fmt.Errorf("%w: llm provider %q is not configured", ErrConfiguration, s.LLM.Provider)
	}
	switch s.Cache.Backend {
	case CacheNone, CacheMemory, CacheSQLite, "":
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrConfiguration, s.Cache.Backend)
	}
	return nil
}

// ValidateServer checks the settings needed to serve HTTP.
func (s *Settings) ValidateServer() error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Server.APIKey == "" {
		return fmt.Errorf("%w: API_KEY is not set", ErrConfiguration)
	}
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid port %d", ErrConfiguration, s.Server.Port)
	}
	return nil
}

func (s SourceSettings) validate() error {
	if !s.Type.IsValid() {
		return fmt.Errorf("%w: unknown source type %q", ErrConfiguration, s.Type)
	}
	switch s.OnError {
	case FailureSkip, FailureAbort, "":
	default:
		return fmt.Errorf("%w: unknown failure policy %q", ErrConfiguration, s.OnError)
	}

	switch s.Type {
	case SourceFilesystem:
		if s.Path == "" {
			return fmt.Errorf("%w: source path is not set", ErrConfiguration)
		}
	case SourceHTTP:
		if s.BaseURL == "" {
			return fmt.Errorf("%w: source base_url is not set", ErrConfiguration)
		}
		if s.Token == "" {
			return fmt.Errorf("%w: STORE_TOKEN is not set", ErrConfiguration)
		}
		if len(s.Files) == 0 {
			return fmt.Errorf("%w: the http source needs an explicit file list", ErrConfiguration)
		}
	case SourceGCS:
		if s.Bucket == "" {
			return fmt.Errorf("%w: source bucket is not set", ErrConfiguration)
		}
		if s.Token == "" && !s.UseDefaultCredentials {
			return fmt.Errorf("%w: STORE_TOKEN is not set", ErrConfiguration)
		}
	case SourceGitHub:
		if owner, name, ok := strings.Cut(s.Repository, "/"); !ok || owner == "" || name == "" {
			return fmt.Errorf("%w: source repository must be owner/name, got %q", ErrConfiguration, s.Repository)
		}
	}
	return nil
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		"llama3.1:8b":       4096,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    DefaultOllamaModel,
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: DefaultOllamaModel,
		AIProviderOpenAI: "text-embedding-3-small",
	}
}
