package hit

import (
	"github.com/kailas-cloud/visearch/internal/domain/modality"
	"github.com/kailas-cloud/visearch/internal/domain/product"
)

// Hit is a single search result: a score, the modality it was computed
// against, and a query-time copy of the product's display fields. Hits are
// built fresh per query and never persisted.
type Hit struct {
	id          string
	score       float64
	modality    modality.Modality
	product     product.Product
	joined      bool
	textVector  []float32
	imageVector []float32
}

// New creates a search hit.
func New(
	id string, score float64, m modality.Modality,
	p product.Product, joined bool,
	textVector, imageVector []float32,
) Hit {
	return Hit{
		id: id, score: score, modality: m,
		product: p, joined: joined,
		textVector: textVector, imageVector: imageVector,
	}
}

// Rescore returns a copy of the hit with a new score and modality.
func (h *Hit) Rescore(score float64, m modality.Modality) Hit {
	out := *h
	out.score = score
	out.modality = m
	return out
}

// ID returns the product identifier.
func (h *Hit) ID() string { return h.id }

// Score returns the similarity score.
func (h *Hit) Score() float64 { return h.score }

// Modality returns the modality the score was computed against.
func (h *Hit) Modality() modality.Modality { return h.modality }

// Product returns the joined display fields. Zero value when Joined is false.
func (h *Hit) Product() product.Product { return h.product }

// Joined reports whether the metadata join succeeded.
func (h *Hit) Joined() bool { return h.joined }

// TextVector returns the candidate's stored text embedding, if retrieved.
func (h *Hit) TextVector() []float32 { return h.textVector }

// ImageVector returns the candidate's stored image embedding, if retrieved.
func (h *Hit) ImageVector() []float32 { return h.imageVector }
