package httpserver

import (
	"context"
	"sync"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// mockAnswerService implements driving.AnswerService for testing.
type mockAnswerService struct {
	mu        sync.Mutex
	answer    domain.Answer
	err       error
	questions []string
	deadline  bool
}

func (m *mockAnswerService) Ask(ctx context.Context, question string) (domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions = append(m.questions, question)
	_, m.deadline = ctx.Deadline()
	if m.err != nil {
		return domain.Answer{}, m.err
	}
	answer := m.answer
	answer.Question = question
	return answer, nil
}

// mockIndexService implements driving.IndexService for testing.
type mockIndexService struct {
	ready bool
}

func (m *mockIndexService) Build(_ context.Context) (domain.IndexStats, error) {
	return domain.IndexStats{Ready: m.ready}, nil
}

func (m *mockIndexService) Ready() bool { return m.ready }

func (m *mockIndexService) Stats() domain.IndexStats {
	return domain.IndexStats{Ready: m.ready}
}
