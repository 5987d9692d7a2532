package catalog

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/product"
)

// Hash field names for product records.
const (
	fieldName       = "name"
	fieldCategory   = "category"
	fieldImageURL   = "image_url"
	fieldProductURL = "product_url"
	fieldPrice      = "price"
	fieldInStock    = "in_stock"
	fieldUpdatedAt  = "updated_at"
	fieldState      = "index_state"
)

func keyPrefix() string {
	return domain.KeyPrefix + "product:"
}

func productKey(id string) string {
	return keyPrefix() + id
}

func indexName() string {
	return domain.KeyPrefix + "product:idx"
}

func extractID(key string) string {
	return strings.TrimPrefix(key, keyPrefix())
}

// buildFields converts a domain product into a flat map[string]string for HSET.
func buildFields(p *product.Product) map[string]string {
	state := p.State()
	if !state.IsValid() {
		state = product.StatePending
	}
	inStock := "0"
	if p.InStock() {
		inStock = "1"
	}
	return map[string]string{
		fieldName:       p.Name(),
		fieldCategory:   p.Category(),
		fieldImageURL:   p.ImageURL(),
		fieldProductURL: p.ProductURL(),
		fieldPrice:      strconv.FormatFloat(p.Price(), 'f', -1, 64),
		fieldInStock:    inStock,
		fieldUpdatedAt:  p.UpdatedAt(),
		fieldState:      string(state),
	}
}

// parseFields converts a flat hash map back into a domain product.
func parseFields(id string, m map[string]string) product.Product {
	price, _ := strconv.ParseFloat(m[fieldPrice], 64)
	state := product.IndexState(m[fieldState])
	if !state.IsValid() {
		state = product.StatePending
	}
	return product.Reconstruct(
		id,
		m[fieldName],
		m[fieldCategory],
		m[fieldImageURL],
		m[fieldProductURL],
		price,
		m[fieldInStock] == "1",
		m[fieldUpdatedAt],
		state,
	)
}
