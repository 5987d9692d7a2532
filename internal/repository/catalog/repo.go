package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/visearch/internal/db"
	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/product"
)

// listPageSize bounds a single FT.SEARCH page while scanning pending records.
const listPageSize = 100

// store is the consumer interface for the product catalog (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo stores product records as hashes with an index_state tag index.
type Repo struct {
	store store
}

// New creates a catalog repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the product FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName())
	if err != nil {
		return fmt.Errorf("probe product index: %w: %w", err, domain.ErrStoreUnavailable)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     indexName(),
		Prefixes: []string{keyPrefix()},
		Fields: []db.IndexField{
			{Name: fieldState, Type: db.IndexFieldTag},
			{Name: fieldCategory, Type: db.IndexFieldTag},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create product index: %w: %w", err, domain.ErrStoreUnavailable)
	}
	return nil
}

// Upsert creates or updates a product record. Returns true if created.
// An existing record's Done state is preserved: re-importing a product never
// reverts it to Pending.
func (r *Repo) Upsert(ctx context.Context, p *product.Product) (bool, error) {
	key := productKey(p.ID())

	existing, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read product %s: %w: %w", p.ID(), err, domain.ErrStoreUnavailable)
	}

	fields := buildFields(p)
	if product.IndexState(existing[fieldState]) == product.StateDone {
		fields[fieldState] = string(product.StateDone)
	}

	if err := r.store.HSet(ctx, key, fields); err != nil {
		return false, fmt.Errorf("write product %s: %w: %w", p.ID(), err, domain.ErrStoreUnavailable)
	}
	return len(existing) == 0, nil
}

// Get returns a product record by ID.
func (r *Repo) Get(ctx context.Context, id string) (product.Product, error) {
	fields, err := r.store.HGetAll(ctx, productKey(id))
	if err != nil {
		return product.Product{}, fmt.Errorf("read product %s: %w: %w", id, err, domain.ErrStoreUnavailable)
	}
	if len(fields) == 0 {
		return product.Product{}, domain.ErrProductNotFound
	}
	return parseFields(id, fields), nil
}

// ListPending returns all products still awaiting embedding, in index order.
func (r *Repo) ListPending(ctx context.Context) ([]product.Product, error) {
	query := fmt.Sprintf("@%s:{%s}", fieldState, product.StatePending)

	var products []product.Product
	offset := 0
	for {
		result, err := r.store.SearchList(ctx, indexName(), query, offset, listPageSize, nil)
		if err != nil {
			return nil, fmt.Errorf("list pending products: %w: %w", err, domain.ErrStoreUnavailable)
		}
		if result == nil || len(result.Entries) == 0 {
			break
		}
		for _, entry := range result.Entries {
			id := extractID(entry.Key)
			products = append(products, parseFields(id, entry.Fields))
		}
		offset += len(result.Entries)
		if offset >= result.Total {
			break
		}
	}

	return products, nil
}

// CountPending returns the number of products awaiting embedding.
func (r *Repo) CountPending(ctx context.Context) (int, error) {
	query := fmt.Sprintf("@%s:{%s}", fieldState, product.StatePending)
	n, err := r.store.SearchCount(ctx, indexName(), query)
	if err != nil {
		return 0, fmt.Errorf("count pending products: %w: %w", err, domain.ErrStoreUnavailable)
	}
	return n, nil
}

// MarkIndexed flips a product's state to Done. Called only after the
// embedding document write succeeded; the flip is a single-field HSET and
// never runs in the other direction.
func (r *Repo) MarkIndexed(ctx context.Context, id string) error {
	fields := map[string]string{fieldState: string(product.StateDone)}
	if err := r.store.HSet(ctx, productKey(id), fields); err != nil {
		return fmt.Errorf("mark product %s indexed: %w: %w", id, err, domain.ErrStoreUnavailable)
	}
	return nil
}
