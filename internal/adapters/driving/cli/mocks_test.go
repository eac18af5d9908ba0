package cli

import (
	"context"
	"sync"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// mockIndexService implements driving.IndexService.
type mockIndexService struct {
	mu     sync.Mutex
	stats  domain.IndexStats
	err    error
	builds int
}

func (m *mockIndexService) Build(_ context.Context) (domain.IndexStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builds++
	if m.err != nil {
		return domain.IndexStats{}, m.err
	}
	m.stats.Ready = true
	return m.stats, nil
}

func (m *mockIndexService) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats.Ready
}

func (m *mockIndexService) Stats() domain.IndexStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

func (m *mockIndexService) Builds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.builds
}

// mockAnswerService implements driving.AnswerService.
type mockAnswerService struct {
	answer    domain.Answer
	err       error
	questions []string
}

func (m *mockAnswerService) Ask(_ context.Context, question string) (domain.Answer, error) {
	m.questions = append(m.questions, question)
	if m.err != nil {
		return domain.Answer{}, m.err
	}
	answer := m.answer
	answer.Question = question
	return answer, nil
}

// mockRetrievalService implements driving.RetrievalService.
type mockRetrievalService struct {
	chunks []domain.RetrievedChunk
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string) ([]domain.RetrievedChunk, error) {
	return m.chunks, nil
}

// mockSource implements driven.DocumentSource.
type mockSource struct {
	closed bool
}

func (m *mockSource) Type() string { return "mock" }

func (m *mockSource) List(_ context.Context) ([]domain.DocumentRef, error) { return nil, nil }

func (m *mockSource) Fetch(_ context.Context, _ domain.DocumentRef) (*domain.RawDocument, error) {
	return nil, domain.ErrNotFound
}

func (m *mockSource) Close() error {
	m.closed = true
	return nil
}

// mockWatchableSource implements driven.WatchableSource. Watch reports
// changes times and then returns.
type mockWatchableSource struct {
	mockSource
	changes int
	err     error
}

func (m *mockWatchableSource) Watch(_ context.Context, onChange func()) error {
	for i := 0; i < m.changes; i++ {
		onChange()
	}
	return m.err
}
