// Package messages defines Bubbletea message types for the chat UI.
package messages

import (
	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// QuestionSubmitted is sent when the user presses enter on a question.
type QuestionSubmitted struct {
	Question string
}

// AnswerReceived carries the answer to a submitted question.
// Err is set when retrieval failed; generation failures arrive as a
// fallback Answer with a nil Err.
type AnswerReceived struct {
	Question string
	Answer   domain.Answer
	Err      error
}

// IndexStatus reports the index snapshot currently published.
type IndexStatus struct {
	Stats domain.IndexStats
}

// IndexBuildFailed reports that the background index build returned an error.
type IndexBuildFailed struct {
	Err error
}
