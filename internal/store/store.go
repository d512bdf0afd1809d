// Package store defines the vector index contract shared by the
// memory, chromem and pgvector backends.
package store

import "context"

// Entry is one indexed chunk with its embedding.
type Entry struct {
	ID         string
	Content    string
	PageNumber int
	ChunkID    int
	Embedding  []float32
}

// Result is one retrieved chunk with its similarity to the query.
type Result struct {
	Content    string
	PageNumber int
	Similarity float32
}

// Index stores chunk vectors and supports nearest-neighbor retrieval.
// The query path only reads; an Index is never mutated after ingestion.
type Index interface {
	Add(ctx context.Context, entries []Entry) error
	Search(ctx context.Context, query []float32, topK int) ([]Result, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Factory builds a fresh, empty Index for one ingestion. The name is a
// unique identifier derived from the document being ingested.
type Factory func(ctx context.Context, name string) (Index, error)
