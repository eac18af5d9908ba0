package domain

import "time"

// RetrievedChunk is a chunk returned by the retriever with its similarity.
type RetrievedChunk struct {
	Chunk Chunk

	// Score is the cosine similarity to the query, higher is closer.
	Score float64
}

// Answer is the reply to a question.
type Answer struct {
	// Question is the question as asked.
	Question string

	// Text is the raw completion, or the apology when Fallback is set.
	Text string

	// Sources are the chunks the completion was conditioned on.
	Sources []RetrievedChunk

	// Fallback is true when Text is the apology rather than a completion.
	Fallback bool
}

// IndexStats describes the currently published index snapshot.
type IndexStats struct {
	// SnapshotID identifies the published snapshot.
	SnapshotID string

	// Ready is true once a snapshot has been published.
	Ready bool

	Documents  int
	Chunks     int
	Skipped    int
	Dimensions int

	// Model is the embedding model the snapshot was built with.
	Model string

	BuiltAt  time.Time
	Duration time.Duration
}
