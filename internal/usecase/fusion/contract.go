package fusion

import (
	"context"

	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/hit"
	"github.com/kailas-cloud/visearch/internal/domain/imagery"
	"github.com/kailas-cloud/visearch/internal/domain/modality"
)

// Searcher runs a single-modality search. Hits must carry the stored vectors.
type Searcher interface {
	Search(ctx context.Context, vec []float32, m modality.Modality, limit int) ([]hit.Hit, error)
}

// TextEncoder vectorizes a text query.
type TextEncoder interface {
	EncodeText(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ImageEncoder vectorizes an image query.
type ImageEncoder interface {
	EncodeImage(ctx context.Context, img imagery.Image) (domain.EmbeddingResult, error)
}
