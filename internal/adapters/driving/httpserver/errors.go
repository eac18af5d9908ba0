// Package httpserver serves the askdocs web front end: the chat page, the
// question endpoint, the wake-up webhook and the health probe.
package httpserver

import "errors"

var (
	// ErrMissingAnswerService is returned when the answer service is not provided.
	ErrMissingAnswerService = errors.New("httpserver: answer service is required")

	// ErrMissingIndexService is returned when the index service is not provided.
	ErrMissingIndexService = errors.New("httpserver: index service is required")
)
