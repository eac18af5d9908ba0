package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// Apology is returned in place of an answer when the LLM call fails or the
// question is blank.
const Apology = "I'm sorry, I couldn't generate an answer right now. Please try again later."

// DefaultRAGAnswerPrompt is the fallback prompt when no PromptStore is
// configured. It matches the rag_answer file shipped by the prompt store.
const DefaultRAGAnswerPrompt = `You are an assistant for question-answering tasks.
Use the following documents to answer the question.
If you don't know the answer, just say that you don't know.
Use a few sentences maximum and keep the answer concise but don't leave out important information:
Question: {question}
Documents: {documents}
Answer:`

// AnswerService answers questions from retrieved chunks.
type AnswerService struct {
	retriever   driving.RetrievalService
	llm         driven.LLMService
	promptStore driven.PromptStore
}

// NewAnswerService creates an answer service. promptStore may be nil.
func NewAnswerService(
	retriever driving.RetrievalService,
	llm driven.LLMService,
	promptStore driven.PromptStore,
) *AnswerService {
	return &AnswerService{
		retriever:   retriever,
		llm:         llm,
		promptStore: promptStore,
	}
}

// Ask retrieves context for question and asks the LLM to answer from it.
func (s *AnswerService) Ask(ctx context.Context, question string) (domain.Answer, error) {
	answer := domain.Answer{Question: question}

	q := strings.TrimSpace(question)
	if q == "" {
		answer.Text = Apology
		answer.Fallback = true
		return answer, nil
	}

	sources, err := s.retriever.Retrieve(ctx, q)
	if err != nil {
		return domain.Answer{}, err
	}
	answer.Sources = sources

	prompt := s.buildPrompt(q, sources)
	logger.Debug("Prompt is %d bytes from %d chunks", len(prompt), len(sources))

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: 0})
	if err != nil {
		if !errors.Is(err, domain.ErrGeneration) {
			err = fmt.Errorf("%w: %w", domain.ErrGeneration, err)
		}
		logger.Error("answer %q with %s: %v", q, s.llm.ModelName(), err)
		answer.Text = Apology
		answer.Fallback = true
		return answer, nil
	}

	answer.Text = text
	return answer, nil
}

// buildPrompt fills the rag_answer template in a single pass, so text inside
// the documents is never treated as a placeholder.
func (s *AnswerService) buildPrompt(question string, sources []domain.RetrievedChunk) string {
	template := DefaultRAGAnswerPrompt
	if s.promptStore != nil {
		if t, err := s.promptStore.Load(driven.PromptRAGAnswer); err == nil && t != "" {
			template = t
		} else if err != nil {
			logger.Warn("load %s prompt: %v", driven.PromptRAGAnswer, err)
		}
	}

	texts := make([]string, len(sources))
	for i, src := range sources {
		texts[i] = src.Chunk.Content
	}

	return strings.NewReplacer(
		"{question}", question,
		"{documents}", strings.Join(texts, "\n"),
	).Replace(template)
}
