// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/askdocs/internal/adapters/driven/embedding/cached"
	ollamaembed "github.com/custodia-labs/askdocs/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/askdocs/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/askdocs/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/askdocs/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/askdocs/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService

	// QueryEmbeddingService embeds questions. It shares the provider and
	// model of EmbeddingService but never touches the cache.
	QueryEmbeddingService driven.EmbeddingService

	Warnings []string // Non-fatal issues found while pinging providers.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates the embedding service (behind the configured cache) and the
// LLM service. Unreachable providers are reported as warnings so a server
// can start while a local model is still loading.
func Init(ctx context.Context, settings *domain.Settings) (*InitResult, error) {
	embedder, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}

	query := embedder

	cache, err := CreateEmbeddingCache(settings.Cache)
	if err != nil {
		embedder.Close()
		return nil, err
	}
	if cache != nil {
		embedder = cached.New(embedder, cache, settings.Embedding.Namespace())
	}

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		embedder.Close()
		return nil, err
	}

	result := &InitResult{EmbeddingService: embedder, LLMService: llm, QueryEmbeddingService: query}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := embedder.Ping(pingCtx); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("embedding service %s unreachable: %v", settings.Embedding.Provider, err))
	}
	if err := llm.Ping(pingCtx); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("llm service %s unreachable: %v", settings.LLM.Provider, err))
	}
	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}

	return result, nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings are missing", domain.ErrConfiguration)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use ollama or openai",
			domain.ErrConfiguration)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %q",
			domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: llm settings are missing", domain.ErrConfiguration)
	}
	timeout := time.Duration(settings.TimeoutSeconds) * time.Second

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %q",
			domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateEmbeddingCache opens the configured cache backend.
// It returns nil when caching is disabled.
func CreateEmbeddingCache(settings domain.CacheSettings) (driven.EmbeddingCache, error) {
	switch settings.Backend {
	case domain.CacheNone, "":
		return nil, nil
	case domain.CacheMemory:
		return memory.NewEmbeddingCache(), nil
	case domain.CacheSQLite:
		store, err := sqlite.NewStore(settings.Dir)
		if err != nil {
			return nil, fmt.Errorf("open embedding cache: %w", err)
		}
		return store.EmbeddingCache(), nil
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", domain.ErrConfiguration, settings.Backend)
	}
}
