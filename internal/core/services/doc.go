// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The index pipeline is Loader -> Chunker -> EmbeddingService -> VectorIndex,
// run by IndexService. Queries flow through RetrieverService and
// AnswerService against the published snapshot.
package services
