package cli

import (
	"context"
	"fmt"

	"github.com/custodia-labs/askdocs/internal/adapters/driven/ai"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/config/file"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/source"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs/internal/core/services"
	"github.com/custodia-labs/askdocs/internal/logger"
	"github.com/custodia-labs/askdocs/internal/normalisers"
	"github.com/custodia-labs/askdocs/internal/postprocessors/chunker"
)

// components holds the services wired for one command run.
type components struct {
	Settings  domain.Settings
	Source    driven.DocumentSource
	Index     driving.IndexService
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService

	closers []func()
}

// Close releases resources in reverse order of creation.
func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// newComponents wires the services for settings. Tests replace it.
var newComponents = wireComponents

// newSettingsStore opens the store named by --config and --env-file.
func newSettingsStore() (*file.SettingsStore, error) {
	return file.NewSettingsStore(configPath, file.WithEnvFile(envFile))
}

// loadSettings reads settings once, before any component is created.
func loadSettings() (domain.Settings, error) {
	store, err := newSettingsStore()
	if err != nil {
		return domain.Settings{}, err
	}
	settings, err := store.Load()
	if err != nil {
		return domain.Settings{}, err
	}
	if settings.Log.Verbose {
		logger.SetVerbose(true)
	}
	return settings, nil
}

func wireComponents(ctx context.Context, settings domain.Settings) (*components, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	logger.Section("Wiring")
	src, err := source.New(ctx, settings.Source, "askdocs/"+version)
	if err != nil {
		return nil, fmt.Errorf("creating %s source: %w", settings.Source.Type, err)
	}
	c := &components{Settings: settings, Source: src}
	c.closers = append(c.closers, func() {
		if err := src.Close(); err != nil {
			logger.Warn("closing source: %v", err)
		}
	})
	logger.Info("source: %s", src.Type())

	aiServices, err := ai.Init(ctx, &settings)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.closers = append(c.closers, aiServices.Close)
	logger.Info("embedding: %s (%s), llm: %s (%s), cache: %s",
		settings.Embedding.Provider, settings.Embedding.Model,
		settings.LLM.Provider, settings.LLM.Model, settings.Cache.Backend)

	prompts, err := file.NewPromptStore("")
	if err != nil {
		c.Close()
		return nil, err
	}

	loader := services.NewLoader(src, normalisers.Defaults(), settings.Source.OnError)
	chunks := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	index := services.NewIndexService(loader, chunks, aiServices.EmbeddingService, memory.BuildVectorIndex,
		services.IndexConfig{
			BatchSize:         settings.Embedding.BatchSize,
			RequestsPerSecond: settings.Embedding.RequestsPerSecond,
		})
	retriever := services.NewRetrieverService(index, aiServices.QueryEmbeddingService, settings.Retrieval.TopK)

	c.Index = index
	c.Retrieval = retriever
	c.Answer = services.NewAnswerService(retriever, aiServices.LLMService, prompts)
	return c, nil
}

// buildIndex wires the services and builds the first snapshot.
// The caller closes the returned components.
func buildIndex(ctx context.Context, settings domain.Settings) (*components, domain.IndexStats, error) {
	c, err := newComponents(ctx, settings)
	if err != nil {
		return nil, domain.IndexStats{}, err
	}

	logger.Section("Index")
	stats, err := c.Index.Build(ctx)
	if err != nil {
		c.Close()
		return nil, domain.IndexStats{}, fmt.Errorf("building index: %w", err)
	}
	logger.Info("indexed %d documents into %d chunks (%d skipped) in %s",
		stats.Documents, stats.Chunks, stats.Skipped, stats.Duration)
	return c, stats, nil
}
