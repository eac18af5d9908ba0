package ai

import (
	"context"
	"time"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// CheckResult reports whether one provider answered a ping.
type CheckResult struct {
	// Component is "embedding" or "llm".
	Component string
	Provider  domain.AIProvider
	Model     string
	Err       error
	Latency   time.Duration
}

// OK returns true if the provider answered.
func (r CheckResult) OK() bool {
	return r.Err == nil
}

// Check pings the configured embedding and LLM providers without building
// any cache or index.
func Check(ctx context.Context, settings *domain.Settings) []CheckResult {
	results := make([]CheckResult, 0, 2)

	embedding := CheckResult{
		Component: "embedding",
		Provider:  settings.Embedding.Provider,
		Model:     settings.Embedding.Model,
	}
	if svc, err := CreateEmbeddingService(&settings.Embedding); err != nil {
		embedding.Err = err
	} else {
		embedding.Latency, embedding.Err = ping(ctx, svc.Ping)
		svc.Close()
	}
	results = append(results, embedding)

	llm := CheckResult{
		Component: "llm",
		Provider:  settings.LLM.Provider,
		Model:     settings.LLM.Model,
	}
	if svc, err := CreateLLMService(&settings.LLM); err != nil {
		llm.Err = err
	} else {
		llm.Latency, llm.Err = ping(ctx, svc.Ping)
		svc.Close()
	}
	results = append(results, llm)

	return results
}

// ValidateEmbeddingConfig creates an embedding service from settings and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()
	_, err = ping(ctx, svc.Ping)
	return err
}

// ValidateLLMConfig creates an LLM service from settings and pings it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()
	_, err = ping(ctx, svc.Ping)
	return err
}

func ping(ctx context.Context, fn func(context.Context) error) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	start := time.Now()
	err := fn(ctx)
	return time.Since(start), err
}
