package driving

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// AnswerService answers questions from the indexed documents.
type AnswerService interface {
	// Ask answers question. Generation failures yield the fallback apology
	// with a nil error; retrieval failures are returned as errors.
	Ask(ctx context.Context, question string) (domain.Answer, error)
}
