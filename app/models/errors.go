package models

import "fmt"

// GenerationError wraps any failure of the remote completion endpoint.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation provider: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// EmbeddingError wraps any failure of the remote embedding endpoint.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding provider: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }
