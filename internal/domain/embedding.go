package domain

import (
	"context"

	"github.com/kailas-cloud/visearch/internal/domain/imagery"
)

// TextEncoder vectorizes text into a fixed-dimension embedding.
type TextEncoder interface {
	EncodeText(ctx context.Context, text string) (EmbeddingResult, error)
}

// ImageEncoder vectorizes an image into a fixed-dimension embedding.
type ImageEncoder interface {
	EncodeImage(ctx context.Context, img imagery.Image) (EmbeddingResult, error)
}

// Encoder is the full multimodal embedding provider contract.
type Encoder interface {
	TextEncoder
	ImageEncoder
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
// A nil or zero-length Embedding with a nil error means the provider produced
// nothing for the input; callers treat that as "nothing to embed", not a fault.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Empty reports whether the provider returned no vector.
func (r EmbeddingResult) Empty() bool { return len(r.Embedding) == 0 }
