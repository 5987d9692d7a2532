package indexing

import (
	"context"

	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/imagery"
	"github.com/kailas-cloud/visearch/internal/domain/product"
)

// Catalog provides the pending scan and the per-product state flip.
type Catalog interface {
	ListPending(ctx context.Context) ([]product.Product, error)
	MarkIndexed(ctx context.Context, id string) error
}

// EmbeddingWriter persists a product's embedding document.
type EmbeddingWriter interface {
	Put(ctx context.Context, id string, textVec, imageVec []float32) error
}

// TextEncoder vectorizes product text.
type TextEncoder interface {
	EncodeText(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ImageEncoder vectorizes a product image.
type ImageEncoder interface {
	EncodeImage(ctx context.Context, img imagery.Image) (domain.EmbeddingResult, error)
}

// ImageFetcher downloads and validates a product image by URL.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (imagery.Image, error)
}
