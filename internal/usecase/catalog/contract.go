package catalog

import (
	"context"

	"github.com/kailas-cloud/visearch/internal/domain/product"
)

// Upserter writes product records to the catalog.
type Upserter interface {
	Upsert(ctx context.Context, p *product.Product) (created bool, err error)
}

// Reader fetches single product records.
type Reader interface {
	Get(ctx context.Context, id string) (product.Product, error)
}
