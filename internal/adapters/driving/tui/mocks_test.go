package tui

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// MockAnswerService is a mock implementation of driving.AnswerService.
type MockAnswerService struct {
	Answer domain.Answer
	Err    error
}

func (m *MockAnswerService) Ask(_ context.Context, _ string) (domain.Answer, error) {
	return m.Answer, m.Err
}

// MockIndexService is a mock implementation of driving.IndexService.
type MockIndexService struct {
	stats domain.IndexStats
}

func (m *MockIndexService) Build(_ context.Context) (domain.IndexStats, error) {
	return m.stats, nil
}

func (m *MockIndexService) Ready() bool { return m.stats.Ready }

func (m *MockIndexService) Stats() domain.IndexStats { return m.stats }
