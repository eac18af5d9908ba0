package httpserver

import (
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the HTTP server.
type Ports struct {
	// Answer answers questions.
	Answer driving.AnswerService

	// Index reports readiness.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Index == nil {
		return ErrMissingIndexService
	}
	return nil
}
