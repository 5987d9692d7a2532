// Package embedding stores per-product embedding documents: one hash per
// product holding both modality vectors. Documents are written with a plain
// HSET, so a rewrite of the same product is idempotent by construction.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/visearch/internal/db"
	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/candidate"
	"github.com/kailas-cloud/visearch/internal/domain/modality"
)

// store is the consumer interface for embedding documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// HNSWConfig holds index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements the vector store contract over FT.SEARCH KNN.
type Repo struct {
	store store
	dim   int
	hnsw  HNSWConfig
}

// New creates an embedding repository for vectors of the given dimension.
func New(s store, dim int) *Repo {
	return &Repo{store: s, dim: dim}
}

// WithHNSW configures HNSW build parameters for EnsureIndex.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// EnsureIndex creates the embedding FT index (two vector fields, inner
// product metric) if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName())
	if err != nil {
		return fmt.Errorf("probe embedding index: %w: %w", err, domain.ErrStoreUnavailable)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     indexName(),
		Prefixes: []string{keyPrefix()},
		Fields: []db.IndexField{
			vectorField(fieldTextVector, r.dim, r.hnsw),
			vectorField(fieldImageVector, r.dim, r.hnsw),
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create embedding index: %w: %w", err, domain.ErrStoreUnavailable)
	}
	return nil
}

// Put writes the embedding document for a product, overwriting any previous
// one. A stray document left by an interrupted run is replaced on retry.
func (r *Repo) Put(ctx context.Context, id string, textVec, imageVec []float32) error {
	fields := map[string]string{
		fieldTextVector:  vectorToBytes(textVec),
		fieldImageVector: vectorToBytes(imageVec),
	}
	if err := r.store.HSet(ctx, docKey(id), fields); err != nil {
		return fmt.Errorf("write embedding doc %s: %w: %w", id, err, domain.ErrStoreUnavailable)
	}
	return nil
}

// Get returns the stored vectors for a product.
func (r *Repo) Get(ctx context.Context, id string) (candidate.Candidate, error) {
	fields, err := r.store.HGetAll(ctx, docKey(id))
	if err != nil {
		return candidate.Candidate{}, fmt.Errorf("read embedding doc %s: %w: %w", id, err, domain.ErrStoreUnavailable)
	}
	if len(fields) == 0 {
		return candidate.Candidate{}, domain.ErrNotFound
	}
	return parseCandidate(id, fields), nil
}

// FindNearest runs a KNN search over the vector field named by the modality
// and returns candidates in the store's order, both stored vectors attached.
// Malformed stored vectors come back nil; the caller scores them as zero.
func (r *Repo) FindNearest(
	ctx context.Context, m modality.Modality, vec []float32, limit int,
) ([]candidate.Candidate, error) {
	field, err := fieldFor(m)
	if err != nil {
		return nil, err
	}

	q := &db.KNNQuery{
		IndexName:    indexName(),
		Field:        field,
		Vector:       vec,
		K:            limit,
		ReturnFields: []string{fieldTextVector, fieldImageVector},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn %s: %w: %w", m, err, domain.ErrStoreUnavailable)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	candidates := make([]candidate.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		candidates = append(candidates, parseCandidate(extractID(entry.Key), entry.Fields))
	}
	return candidates, nil
}
