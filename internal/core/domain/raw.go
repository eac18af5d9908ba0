package domain

import (
	"path"
	"strings"
)

// DocumentRef names a document a source can fetch.
type DocumentRef struct {
	// Name is the path of the document relative to the source root.
	Name string

	// URI is the absolute location of the document.
	URI string

	// Size is the document size in bytes, when known.
	Size int64
}

// RawDocument represents opaque bytes fetched by a document source.
// It is the source's output before text extraction.
type RawDocument struct {
	// Name is the source-relative name the document was requested by.
	Name string

	// URI is the original location (file path, URL, etc).
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains source-specific key-value pairs.
	Metadata map[string]any
}

// SkippedDocument records a file left out of the index and why.
type SkippedDocument struct {
	Name   string
	Reason string
}

// LoadReport summarises a loader run.
type LoadReport struct {
	// Loaded lists the names of documents that produced text.
	Loaded []string

	// Skipped lists documents that failed to fetch or extract.
	Skipped []SkippedDocument
}

// SupportedExtensions lists the file extensions sources enumerate.
var SupportedExtensions = []string{".pdf", ".docx", ".txt"}

// IsSupportedDocument reports whether name has a supported extension.
// The comparison ignores case.
func IsSupportedDocument(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
