package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown source, provider or document format.
	ErrUnsupportedType = errors.New("unsupported type")

	// Start-up Errors.

	// ErrConfiguration indicates a required setting or credential is missing.
	// It is fatal and reported before any network call is made.
	ErrConfiguration = errors.New("configuration error")

	// ErrDownload indicates a document could not be fetched from its source.
	ErrDownload = errors.New("download failed")

	// ErrNoDocuments indicates that no document could be loaded at all.
	// The index cannot be built and the server must not start.
	ErrNoDocuments = errors.New("no documents were loaded")

	// Query Errors.

	// ErrEmbedding indicates the embedding provider failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration indicates the LLM completion call failed.
	ErrGeneration = errors.New("generation failed")

	// ErrIndexNotReady indicates no index snapshot has been published yet.
	ErrIndexNotReady = errors.New("index not ready")
)
