package domain

import "time"

// Document is the extracted text of one successfully loaded file.
// It is immutable once created and is discarded after chunking.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Source is the name the document source knows the file by.
	Source string

	// URI is the original location (file path, URL, etc).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after extraction.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// LoadedAt is when the document was extracted.
	LoadedAt time.Time
}

// Chunk is a bounded window of a Document's text.
// Consecutive chunks of one document overlap.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Source is the originating document's source name.
	Source string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Tokens is the size of the chunk in tokenizer units.
	Tokens int

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}
