package retrieval

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/candidate"
	"github.com/kailas-cloud/visearch/internal/domain/imagery"
	"github.com/kailas-cloud/visearch/internal/domain/modality"
	"github.com/kailas-cloud/visearch/internal/domain/product"
)

type mockVectorStore struct {
	candidates []candidate.Candidate
	err        error

	gotModality modality.Modality
	gotLimit    int
}

func (m *mockVectorStore) FindNearest(
	_ context.Context, mod modality.Modality, _ []float32, limit int,
) ([]candidate.Candidate, error) {
	m.gotModality = mod
	m.gotLimit = limit
	return m.candidates, m.err
}

type mockProducts struct {
	records map[string]product.Product
	err     error
}

func (m *mockProducts) Get(_ context.Context, id string) (product.Product, error) {
	if m.err != nil {
		return product.Product{}, m.err
	}
	p, ok := m.records[id]
	if !ok {
		return product.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

type mockTextEncoder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockTextEncoder) EncodeText(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

type mockImageEncoder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockImageEncoder) EncodeImage(_ context.Context, _ imagery.Image) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

type fixture struct {
	store    *mockVectorStore
	products *mockProducts
	texts    *mockTextEncoder
	images   *mockImageEncoder
}

// newTestService builds a service with dimension 2 so test vectors stay legible.
func newTestService(t *testing.T) (*Service, *fixture) {
	t.Helper()
	f := &fixture{
		store:    &mockVectorStore{},
		products: &mockProducts{records: make(map[string]product.Product)},
		texts:    &mockTextEncoder{},
		images:   &mockImageEncoder{},
	}
	svc := New(f.store, f.products, f.texts, f.images, 2, zap.NewNop())
	return svc, f
}

func namedProduct(id string) product.Product {
	return product.New(id, "product "+id, "category", "", "", 1, true, "")
}

func imageryFixture() imagery.Image {
	return imagery.New([]byte{0xFF, 0xD8, 0xFF}, "image/jpeg", 8, 8)
}
