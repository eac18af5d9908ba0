package chat

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/askdocs/internal/core/domain"
)

type mockAnswerService struct {
	answer    domain.Answer
	err       error
	questions []string
}

func (m *mockAnswerService) Ask(_ context.Context, question string) (domain.Answer, error) {
	m.questions = append(m.questions, question)
	return m.answer, m.err
}

type mockIndexService struct {
	stats domain.IndexStats
}

func (m *mockIndexService) Build(_ context.Context) (domain.IndexStats, error) {
	return m.stats, nil
}

func (m *mockIndexService) Ready() bool {
	return m.stats.Ready
}

func (m *mockIndexService) Stats() domain.IndexStats {
	return m.stats
}

func typeText(v *View, text string) *View {
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return v
}

// submit types question, presses enter and runs the resulting commands
// until the answer has been delivered back to the view.
func submit(t *testing.T, v *View, question string) *View {
	t.Helper()
	v = typeText(v, question)

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	submitted, ok := cmd().(messages.QuestionSubmitted)
	require.True(t, ok)

	v, cmd = v.Update(submitted)
	require.NotNil(t, cmd)
	assert.True(t, v.Pending())
	assert.Equal(t, status.StateThinking, v.Status())

	v, _ = v.Update(cmd())
	return v
}

func newView(answers *mockAnswerService) *View {
	v := NewView(nil, answers, &mockIndexService{stats: domain.IndexStats{Ready: true}})
	v.SetDimensions(100, 30)
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, &mockAnswerService{}, nil)

	require.NotNil(t, v)
	assert.Zero(t, v.Turns())
	assert.False(t, v.Pending())
	assert.Contains(t, v.View(), "Ask a question about the indexed documents.")
}

func TestView_AskQuestion(t *testing.T) {
	answers := &mockAnswerService{answer: domain.Answer{
		Text: "You get 25 days.",
		Sources: []domain.RetrievedChunk{
			{Chunk: domain.Chunk{Source: "handbook.pdf"}, Score: 0.91},
		},
	}}
	v := newView(answers)

	v = submit(t, v, "How much leave?")

	assert.Equal(t, []string{"How much leave?"}, answers.questions)
	assert.Equal(t, 1, v.Turns())
	assert.False(t, v.Pending())
	assert.Equal(t, status.StateReady, v.Status())

	view := v.View()
	assert.Contains(t, view, "How much leave?")
	assert.Contains(t, view, "You get 25 days.")
	assert.NotContains(t, view, "handbook.pdf")
}

func TestView_ToggleSources(t *testing.T) {
	answers := &mockAnswerService{answer: domain.Answer{
		Text:    "ok",
		Sources: []domain.RetrievedChunk{{Chunk: domain.Chunk{Source: "handbook.pdf"}, Score: 0.91}},
	}}
	v := submit(t, newView(answers), "q")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.True(t, v.ShowSources())
	assert.Contains(t, v.View(), "[1] handbook.pdf (0.91)")
}

func TestView_BlankQuestionIgnored(t *testing.T) {
	answers := &mockAnswerService{}
	v := newView(answers)
	v = typeText(v, "   ")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Zero(t, v.Turns())
	assert.Empty(t, answers.questions)
}

func TestView_EnterIgnoredWhilePending(t *testing.T) {
	v := newView(&mockAnswerService{})
	v, _ = v.Update(messages.QuestionSubmitted{Question: "first"})
	v = typeText(v, "second")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, 1, v.Turns())
}

func TestView_RetrievalError(t *testing.T) {
	v := submit(t, newView(&mockAnswerService{err: domain.ErrIndexNotReady}), "q")

	assert.Equal(t, status.StateError, v.Status())
	assert.Contains(t, v.View(), "index not ready")
}

func TestView_FallbackAnswer(t *testing.T) {
	answers := &mockAnswerService{answer: domain.Answer{Text: "I'm sorry", Fallback: true}}
	v := submit(t, newView(answers), "q")

	assert.Equal(t, status.StateReady, v.Status())
	assert.Contains(t, v.View(), "I'm sorry")
}

func TestView_NoAnswerService(t *testing.T) {
	v := NewView(nil, nil, nil)
	v, cmd := v.Update(messages.QuestionSubmitted{Question: "q"})

	msg := cmd().(messages.AnswerReceived)
	assert.ErrorIs(t, msg.Err, ErrNoAnswerService)

	v, _ = v.Update(msg)
	assert.Equal(t, status.StateError, v.Status())
}

func TestView_Clear(t *testing.T) {
	v := submit(t, newView(&mockAnswerService{answer: domain.Answer{Text: "ok"}}), "q")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Zero(t, v.Turns())
}

func TestView_IndexStatusPollsUntilReady(t *testing.T) {
	index := &mockIndexService{}
	v := NewView(nil, &mockAnswerService{}, index)

	v, cmd := v.Update(messages.IndexStatus{Stats: index.Stats()})
	assert.NotNil(t, cmd, "not ready schedules another check")
	assert.Equal(t, status.StateNotReady, v.Status())

	v, cmd = v.Update(messages.IndexStatus{Stats: domain.IndexStats{Ready: true, Documents: 2}})
	assert.Nil(t, cmd)
	assert.Equal(t, status.StateReady, v.Status())
}

func TestView_BuildFailureStopsPolling(t *testing.T) {
	v := NewView(nil, &mockAnswerService{}, &mockIndexService{})

	v, cmd := v.Update(messages.IndexBuildFailed{Err: domain.ErrNoDocuments})
	assert.Nil(t, cmd)
	assert.Equal(t, status.StateError, v.Status())
	assert.ErrorIs(t, v.BuildErr(), domain.ErrNoDocuments)

	v, cmd = v.Update(messages.IndexStatus{Stats: domain.IndexStats{}})
	assert.Nil(t, cmd, "a failed build is not polled again")
	assert.Equal(t, status.StateError, v.Status())
}

func TestView_CheckIndexWithoutService(t *testing.T) {
	v := NewView(nil, &mockAnswerService{}, nil)

	msg := v.checkIndex()().(messages.IndexStatus)
	assert.True(t, msg.Stats.Ready)
}

func TestView_SetDimensions(t *testing.T) {
	v := NewView(nil, &mockAnswerService{}, nil)

	v.SetDimensions(120, 40)
	assert.Equal(t, 116, v.viewport.Width)
	assert.Equal(t, 33, v.viewport.Height)

	v.SetDimensions(40, 5)
	assert.Equal(t, 3, v.viewport.Height)
}

func TestView_WithContext(t *testing.T) {
	type key string
	ctx := context.WithValue(context.Background(), key("k"), "v")
	v := NewView(nil, &mockAnswerService{}, nil).WithContext(ctx)

	assert.Equal(t, ctx, v.ctx)
}
