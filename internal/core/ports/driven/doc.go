// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentSource: Lists and fetches document bytes
//   - Normaliser: Extracts text from one document format
//   - Chunker: Splits document text into overlapping windows
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Immutable nearest-neighbour lookup over embeddings
//   - LLMService: Text completion
//   - PromptStore: Prompt templates
//   - SettingsStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingCache: Reuses vectors across builds. Without it every chunk is embedded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, source, or normaliser package
package driven
