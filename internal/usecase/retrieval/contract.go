package retrieval

import (
	"context"

	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/candidate"
	"github.com/kailas-cloud/visearch/internal/domain/imagery"
	"github.com/kailas-cloud/visearch/internal/domain/modality"
	"github.com/kailas-cloud/visearch/internal/domain/product"
)

// VectorStore fetches nearest-neighbor candidates by modality field.
type VectorStore interface {
	FindNearest(ctx context.Context, m modality.Modality, vec []float32, limit int) ([]candidate.Candidate, error)
}

// ProductReader joins catalog metadata onto hits.
type ProductReader interface {
	Get(ctx context.Context, id string) (product.Product, error)
}

// TextEncoder vectorizes a text query.
type TextEncoder interface {
	EncodeText(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ImageEncoder vectorizes an image query.
type ImageEncoder interface {
	EncodeImage(ctx context.Context, img imagery.Image) (domain.EmbeddingResult, error)
}
