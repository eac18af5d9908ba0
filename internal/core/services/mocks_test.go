package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// mockSource implements driven.DocumentSource for testing.
type mockSource struct {
	refs     []domain.DocumentRef
	listErr  error
	contents map[string]string
	mimes    map[string]string
	fetchErr map[string]error
	fetched  []string
}

func (m *mockSource) Type() string { return "mock" }

func (m *mockSource) List(_ context.Context) ([]domain.DocumentRef, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.refs, nil
}

func (m *mockSource) Fetch(_ context.Context, ref domain.DocumentRef) (*domain.RawDocument, error) {
	m.fetched = append(m.fetched, ref.Name)
	if err := m.fetchErr[ref.Name]; err != nil {
		return nil, err
	}
	return &domain.RawDocument{
		Name:     ref.Name,
		URI:      "mock://" + ref.Name,
		MIMEType: m.mimes[ref.Name],
		Content:  []byte(m.contents[ref.Name]),
	}, nil
}

func (m *mockSource) Close() error { return nil }

func refs(names ...string) []domain.DocumentRef {
	out := make([]domain.DocumentRef, len(names))
	for i, n := range names {
		out[i] = domain.DocumentRef{Name: n}
	}
	return out
}

// mockRegistry implements driven.NormaliserRegistry for testing.
// Content starting with "!" fails extraction.
type mockRegistry struct{}

func (m *mockRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	content := string(raw.Content)
	if strings.HasPrefix(content, "!") {
		return nil, domain.ErrInvalidInput
	}
	return &domain.Document{
		ID:       "doc-" + raw.Name,
		URI:      raw.URI,
		Title:    raw.Name,
		Content:  content,
		Metadata: map[string]any{"format": "text", "mime_type": raw.MIMEType},
	}, nil
}

func (m *mockRegistry) Register(_ driven.Normaliser) {}

func (m *mockRegistry) SupportedMIMETypes() []string { return []string{"text/plain"} }

// mockLoader implements DocumentLoader for testing.
type mockLoader struct {
	mu     sync.Mutex
	docs   []domain.Document
	report domain.LoadReport
	err    error
	calls  int
}

func (m *mockLoader) Load(_ context.Context) ([]domain.Document, domain.LoadReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.report, m.err
	}
	return m.docs, m.report, nil
}

func (m *mockLoader) set(docs []domain.Document, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = docs
	m.err = err
}

// mockChunker implements driven.Chunker by splitting on "|".
type mockChunker struct{}

func (m *mockChunker) Name() string { return "mock" }

func (m *mockChunker) Chunk(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for i, part := range strings.Split(doc.Content, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:         doc.ID + "-" + part,
			DocumentID: doc.ID,
			Source:     doc.Source,
			Content:    part,
			Position:   i,
		})
	}
	return chunks, nil
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Known texts map to fixed vectors; anything else gets fallback.
type mockEmbeddingService struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	embedErr error
	batches  [][]string
	queries  []string
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	if m.fallback != nil {
		return m.fallback
	}
	return []float32{0, 0, 1}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, text)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, texts)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i, t := range texts {
		result[i] = m.vector(t)
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int { return 3 }

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// mockVectorIndex implements driven.VectorIndex with fixed hits.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	searchErr error
	size      int
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockVectorIndex) Len() int { return m.size }

func (m *mockVectorIndex) Dimensions() int { return 3 }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response string
	err      error
	prompts  []string
	opts     []driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }

func (m *mockLLMService) Ping(_ context.Context) error { return nil }

func (m *mockLLMService) Close() error { return nil }

// mockRetriever implements driving.RetrievalService for testing.
type mockRetriever struct {
	chunks  []domain.RetrievedChunk
	err     error
	queries []string
}

func (m *mockRetriever) Retrieve(_ context.Context, query string) ([]domain.RetrievedChunk, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.chunks, nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	template string
	err      error
}

func (m *mockPromptStore) Load(_ string) (string, error) {
	return m.template, m.err
}

func (m *mockPromptStore) Reload() {}

// staticSnapshots implements SnapshotSource for testing.
type staticSnapshots struct {
	snapshot *Snapshot
}

func (s *staticSnapshots) Current() *Snapshot { return s.snapshot }
