package rag

import (
	"context"
	"fmt"
)

// Document is one retrieved (or to-be-ingested) knowledge-base entry. On the
// query path Vector is only populated while the marginal-relevance selection
// runs; consumers see content and metadata.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any
	Vector   []float32
}

// Retriever finds the documents most relevant to a piece of text. Results are
// ordered by selection order and never exceed k. An empty result is a valid,
// non-error outcome.
type Retriever interface {
	Search(ctx context.Context, text string, k, fetchK int) ([]Document, error)
}

type vectorStore interface {
	UpsertBatch(ctx context.Context, docs []Document) error
	Query(ctx context.Context, vector []float32, limit int) ([]Document, error)
	InitContext(ctx context.Context, vectorSize int) (bool, error)
	Close() error
}

// VectorStoreError wraps any failure of the remote vector database.
type VectorStoreError struct {
	Err error
}

func (e *VectorStoreError) Error() string {
	return fmt.Sprintf("vector store: %v", e.Err)
}

func (e *VectorStoreError) Unwrap() error { return e.Err }
