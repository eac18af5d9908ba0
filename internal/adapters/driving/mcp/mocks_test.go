package mcp

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer   domain.Answer
	err      error
	question string
}

func (m *mockAnswerService) Ask(_ context.Context, question string) (domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.RetrievedChunk
	err     error
	calls   int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string) ([]domain.RetrievedChunk, error) {
	m.calls++
	return m.results, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	stats domain.IndexStats
}

func (m *mockIndexService) Build(_ context.Context) (domain.IndexStats, error) {
	return m.stats, nil
}

func (m *mockIndexService) Ready() bool { return m.stats.Ready }

func (m *mockIndexService) Stats() domain.IndexStats { return m.stats }
