// Package mcp provides an MCP (Model Context Protocol) server adapter for askdocs.
// It lets AI assistants ask questions about, and retrieve passages from,
// the indexed documents.
package mcp

import "errors"

var (
	// ErrMissingAnswerService is returned when the answer service is not provided.
	ErrMissingAnswerService = errors.New("mcp: answer service is required")

	// ErrMissingRetrievalService is returned when the retrieval service is not provided.
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
)
