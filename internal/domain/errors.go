package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrProductNotFound signals a missing product record.
	ErrProductNotFound = errors.New("product not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidQuery signals an invalid search parameter (alpha, limit, modality).
	ErrInvalidQuery = errors.New("invalid query")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrStoreUnavailable signals that the vector store is unreachable.
	ErrStoreUnavailable = errors.New("vector store unavailable")
	// ErrIndexingBusy signals that an indexing run is already in progress.
	ErrIndexingBusy = errors.New("indexing already running")
)

// DimMismatchError wraps ErrVectorDimMismatch with the expected and actual lengths.
type DimMismatchError struct {
	Want int
	Got  int
}

func (e *DimMismatchError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", ErrVectorDimMismatch.Error(), e.Want, e.Got)
}

func (e *DimMismatchError) Unwrap() error { return ErrVectorDimMismatch }

// NewDimMismatch creates a dimension mismatch error.
func NewDimMismatch(want, got int) error {
	return &DimMismatchError{Want: want, Got: got}
}
