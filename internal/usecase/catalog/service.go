package catalog

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/batch"
	"github.com/kailas-cloud/visearch/internal/domain/product"
)

// MaxImportSize is the maximum number of products per import request.
const MaxImportSize = 500

// Service handles catalog imports with per-item error reporting.
type Service struct {
	repo          Upserter
	reader        Reader
	maxImportSize int
}

// New creates a catalog service.
func New(repo Upserter, reader Reader) *Service {
	return &Service{repo: repo, reader: reader, maxImportSize: MaxImportSize}
}

// WithMaxImportSize configures the maximum import batch size.
func (s *Service) WithMaxImportSize(size int) *Service {
	if size > 0 {
		s.maxImportSize = size
	}
	return s
}

// Import upserts products one by one. An imported product starts Pending
// unless it was already Done; a failed item never blocks the rest.
func (s *Service) Import(ctx context.Context, items []product.Product) []batch.Result {
	results := make([]batch.Result, len(items))

	if len(items) > s.maxImportSize {
		for i := range items {
			results[i] = batch.NewError(
				items[i].ID(),
				fmt.Errorf("import size exceeds %d: %w", s.maxImportSize, domain.ErrInvalidQuery),
			)
		}
		return results
	}

	for i := range items {
		p := &items[i]
		if p.ID() == "" {
			results[i] = batch.NewError("", fmt.Errorf("product id is empty: %w", domain.ErrInvalidQuery))
			continue
		}

		created, err := s.repo.Upsert(ctx, p)
		switch {
		case err != nil:
			results[i] = batch.NewError(p.ID(), fmt.Errorf("upsert: %w", err))
		case created:
			results[i] = batch.NewCreated(p.ID())
		default:
			results[i] = batch.NewUpdated(p.ID())
		}
	}
	return results
}

// Get returns a single product record.
func (s *Service) Get(ctx context.Context, id string) (product.Product, error) {
	p, err := s.reader.Get(ctx, id)
	if err != nil {
		return product.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}
