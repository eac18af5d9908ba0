// Package memory provides in-process implementations of the embedding
// cache and the vector index.
package memory
