package fusion

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/hit"
	"github.com/kailas-cloud/visearch/internal/domain/imagery"
	"github.com/kailas-cloud/visearch/internal/domain/modality"
	"github.com/kailas-cloud/visearch/internal/domain/vector"
)

// Service re-ranks candidates from independent text and image searches by
// cosine similarity against an alpha-blended query vector.
//
// Cosine rather than dot product at this step: the weighted sum shifts vector
// magnitudes unevenly across candidates depending on which modalities are
// present, and cosine removes that bias.
type Service struct {
	searcher Searcher
	texts    TextEncoder
	images   ImageEncoder
}

// New creates a fusion service.
func New(searcher Searcher, texts TextEncoder, images ImageEncoder) *Service {
	return &Service{searcher: searcher, texts: texts, images: images}
}

// merged is one deduplicated candidate. Each side's vector is set only when
// the candidate appeared in that modality's hit list.
type merged struct {
	base        hit.Hit
	textVector  []float32
	imageVector []float32
}

// Fuse runs both single-modality searches, merges the hit lists keyed by
// product id (text list first), blends each candidate's present vectors with
// alpha, and re-ranks by cosine against the equally blended query pair.
// Ties keep merge-insertion order; the result is truncated to limit.
func (s *Service) Fuse(
	ctx context.Context, textVec, imageVec []float32, alpha float64, limit int,
) ([]hit.Hit, error) {
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("alpha %v outside [0, 1]: %w", alpha, domain.ErrInvalidQuery)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d: %w", limit, domain.ErrInvalidQuery)
	}
	if len(textVec) == 0 && len(imageVec) == 0 {
		return nil, nil
	}

	var textHits, imageHits []hit.Hit
	var err error
	if len(textVec) > 0 {
		textHits, err = s.searcher.Search(ctx, textVec, modality.Text, limit)
		if err != nil {
			return nil, fmt.Errorf("text side: %w", err)
		}
	}
	if len(imageVec) > 0 {
		imageHits, err = s.searcher.Search(ctx, imageVec, modality.Image, limit)
		if err != nil {
			return nil, fmt.Errorf("image side: %w", err)
		}
	}

	candidates := mergeHits(textHits, imageHits)
	if len(candidates) == 0 {
		return nil, nil
	}

	queryCombined := vector.Blend(alpha, imageVec, textVec)

	hits := make([]hit.Hit, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		combined := vector.Blend(alpha, c.imageVector, c.textVector)
		score := 0.0
		if len(combined) > 0 {
			score = vector.Cosine(combined, queryCombined)
		}
		hits = append(hits, c.base.Rescore(score, modality.Combined))
	}

	// Stable: ties keep merge-insertion order (text-list candidates first).
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score() > hits[j].Score()
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// SearchMultimodal embeds both query sides and fuses. Empty embeddings on
// both sides mean "nothing to search": empty result, nil error.
func (s *Service) SearchMultimodal(
	ctx context.Context, query string, img imagery.Image, alpha float64, limit int,
) ([]hit.Hit, error) {
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("alpha %v outside [0, 1]: %w", alpha, domain.ErrInvalidQuery)
	}

	textResult, err := s.texts.EncodeText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query text: %w", err)
	}
	imageResult, err := s.images.EncodeImage(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("vectorize query image: %w", err)
	}

	return s.Fuse(ctx, textResult.Embedding, imageResult.Embedding, alpha, limit)
}

// mergeHits deduplicates the two hit lists by product id, text list first.
// A candidate in both lists exposes both stored vectors; a candidate in one
// list exposes only that list's vector, the other side stays absent.
func mergeHits(textHits, imageHits []hit.Hit) []merged {
	out := make([]merged, 0, len(textHits)+len(imageHits))
	byID := make(map[string]int, len(textHits)+len(imageHits))

	for i := range textHits {
		h := textHits[i]
		byID[h.ID()] = len(out)
		out = append(out, merged{base: h, textVector: h.TextVector()})
	}
	for i := range imageHits {
		h := imageHits[i]
		if idx, ok := byID[h.ID()]; ok {
			out[idx].imageVector = h.ImageVector()
			continue
		}
		byID[h.ID()] = len(out)
		out = append(out, merged{base: h, imageVector: h.ImageVector()})
	}
	return out
}
