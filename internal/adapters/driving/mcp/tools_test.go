package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

func chunks() []domain.RetrievedChunk {
	return []domain.RetrievedChunk{
		{Chunk: domain.Chunk{Source: "handbook.pdf", Content: "Leave is 25 days."}, Score: 0.91},
		{Chunk: domain.Chunk{Source: "policy.docx", Content: "Carry over 5 days."}, Score: 0.72},
		{Chunk: domain.Chunk{Source: "faq.txt", Content: "Ask HR."}, Score: 0.40},
	}
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and sources", func(t *testing.T) {
		answers := &mockAnswerService{answer: domain.Answer{Text: "25 days.", Sources: chunks()[:1]}}
		ports := validPorts()
		ports.Answer = answers
		server, err := NewServer(ports, "test")
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "How much leave?"})

		require.NoError(t, err)
		assert.Equal(t, "How much leave?", answers.question)
		assert.Equal(t, "25 days.", output.Answer)
		assert.False(t, output.Fallback)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, PassageOutput{Source: "handbook.pdf", Score: 0.91, Content: "Leave is 25 days."}, output.Sources[0])
	})

	t.Run("reports fallback", func(t *testing.T) {
		ports := validPorts()
		ports.Answer = &mockAnswerService{answer: domain.Answer{Text: "sorry", Fallback: true}}
		server, err := NewServer(ports, "test")
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.NoError(t, err)
		assert.True(t, output.Fallback)
		assert.Empty(t, output.Sources)
	})

	t.Run("returns retrieval error", func(t *testing.T) {
		ports := validPorts()
		ports.Answer = &mockAnswerService{err: domain.ErrIndexNotReady}
		server, err := NewServer(ports, "test")
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})
		assert.ErrorIs(t, err, domain.ErrIndexNotReady)
	})

	t.Run("blank question is rejected", func(t *testing.T) {
		answers := &mockAnswerService{answer: domain.Answer{Text: "sorry", Fallback: true}}
		ports := validPorts()
		ports.Answer = answers
		server, err := NewServer(ports, "test")
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "   "})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, answers.question)
	})
}

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns passages", func(t *testing.T) {
		ports := validPorts()
		ports.Retrieval = &mockRetrievalService{results: chunks()}
		server, err := NewServer(ports, "test")
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "leave"})

		require.NoError(t, err)
		assert.Equal(t, 3, output.Count)
		assert.Equal(t, "policy.docx", output.Passages[1].Source)
		assert.Equal(t, 0.72, output.Passages[1].Score)
	})

	t.Run("limit truncates", func(t *testing.T) {
		ports := validPorts()
		ports.Retrieval = &mockRetrievalService{results: chunks()}
		server, err := NewServer(ports, "test")
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "leave", Limit: 2})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Len(t, output.Passages, 2)
	})

	t.Run("blank query is rejected", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		ports := validPorts()
		ports.Retrieval = retrieval
		server, err := NewServer(ports, "test")
		require.NoError(t, err)

		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{Query: "  "})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, retrieval.calls)
	})

	t.Run("returns error on retrieval failure", func(t *testing.T) {
		ports := validPorts()
		ports.Retrieval = &mockRetrievalService{err: domain.ErrEmbedding}
		server, err := NewServer(ports, "test")
		require.NoError(t, err)

		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{Query: "leave"})
		assert.ErrorIs(t, err, domain.ErrEmbedding)
	})
}
