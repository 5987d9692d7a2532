package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/hit"
	"github.com/kailas-cloud/visearch/internal/domain/imagery"
	"github.com/kailas-cloud/visearch/internal/domain/modality"
	"github.com/kailas-cloud/visearch/internal/domain/product"
	"github.com/kailas-cloud/visearch/internal/domain/vector"
)

// Service handles single-modality similarity search with metadata join.
//
// The store's HNSW index is used for candidate retrieval only. Scores are
// recomputed here from the raw stored vectors and the list is re-sorted, so
// every call site ranks by the same dot-product formula.
type Service struct {
	store    VectorStore
	products ProductReader
	texts    TextEncoder
	images   ImageEncoder
	dim      int
	logger   *zap.Logger
}

// New creates a retrieval service for vectors of the given dimension.
func New(
	store VectorStore, products ProductReader,
	texts TextEncoder, images ImageEncoder,
	dim int, logger *zap.Logger,
) *Service {
	return &Service{
		store: store, products: products,
		texts: texts, images: images,
		dim: dim, logger: logger,
	}
}

// Search runs a KNN search over the field named by the modality, re-scores
// candidates by dot product, and joins catalog metadata per hit.
// A candidate with a missing or wrong-dimension stored vector scores 0 and
// stays in the output; a failed metadata join leaves the hit unjoined.
func (s *Service) Search(
	ctx context.Context, vec []float32, m modality.Modality, limit int,
) ([]hit.Hit, error) {
	if len(vec) != s.dim {
		return nil, domain.NewDimMismatch(s.dim, len(vec))
	}
	if !m.Searchable() {
		return nil, fmt.Errorf("modality %q is not searchable: %w", m, domain.ErrInvalidQuery)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d: %w", limit, domain.ErrInvalidQuery)
	}

	candidates, err := s.store.FindNearest(ctx, m, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("find nearest %s: %w", m, err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	hits := make([]hit.Hit, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]

		stored := c.TextVector()
		if m == modality.Image {
			stored = c.ImageVector()
		}
		score := 0.0
		if len(stored) == s.dim {
			score = vector.Dot(vec, stored)
		}

		p, joined := s.join(ctx, c.ID())
		hits = append(hits, hit.New(c.ID(), score, m, p, joined, c.TextVector(), c.ImageVector()))
	}

	// Stable: equal scores keep the store's returned order.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score() > hits[j].Score()
	})

	return hits, nil
}

// SearchText embeds the query text and searches the text field.
// An empty query embedding is "nothing to search": empty result, nil error.
func (s *Service) SearchText(ctx context.Context, query string, limit int) ([]hit.Hit, error) {
	result, err := s.texts.EncodeText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query text: %w", err)
	}
	if result.Empty() {
		return nil, nil
	}
	return s.Search(ctx, result.Embedding, modality.Text, limit)
}

// SearchImage embeds the query image and searches the image field.
func (s *Service) SearchImage(ctx context.Context, img imagery.Image, limit int) ([]hit.Hit, error) {
	result, err := s.images.EncodeImage(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("vectorize query image: %w", err)
	}
	if result.Empty() {
		return nil, nil
	}
	return s.Search(ctx, result.Embedding, modality.Image, limit)
}

// join fetches the product record for a hit. Any failure is non-fatal: the
// hit goes out with its score and an empty product.
func (s *Service) join(ctx context.Context, id string) (product.Product, bool) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			s.logger.Warn("Metadata join failed", zap.String("product_id", id), zap.Error(err))
		}
		return product.Product{}, false
	}
	return p, true
}
