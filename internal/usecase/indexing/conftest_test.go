package indexing

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/imagery"
	"github.com/kailas-cloud/visearch/internal/domain/product"
)

// ops is a shared call log so tests can assert cross-collaborator ordering.
type ops struct {
	log []string
}

func (o *ops) add(entry string) { o.log = append(o.log, entry) }

type mockCatalog struct {
	ops     *ops
	pending []product.Product
	listErr error
	listFn  func(ctx context.Context) // optional hook, runs before returning
	markErr map[string]error
	marked  []string
}

func (m *mockCatalog) ListPending(ctx context.Context) ([]product.Product, error) {
	if m.listFn != nil {
		m.listFn(ctx)
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.pending, nil
}

func (m *mockCatalog) MarkIndexed(_ context.Context, id string) error {
	if err := m.markErr[id]; err != nil {
		return err
	}
	m.ops.add("mark:" + id)
	m.marked = append(m.marked, id)
	return nil
}

type mockWriter struct {
	ops    *ops
	putErr map[string]error
	puts   []string
}

func (m *mockWriter) Put(_ context.Context, id string, _, _ []float32) error {
	if err := m.putErr[id]; err != nil {
		return err
	}
	m.ops.add("put:" + id)
	m.puts = append(m.puts, id)
	return nil
}

type mockTextEncoder struct {
	dim     int
	failFor map[string]error // keyed by input text
	emptyOn map[string]bool
}

func (m *mockTextEncoder) EncodeText(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if err := m.failFor[text]; err != nil {
		return domain.EmbeddingResult{}, err
	}
	if m.emptyOn[text] {
		return domain.EmbeddingResult{}, nil
	}
	return domain.EmbeddingResult{Embedding: make([]float32, m.dim), TotalTokens: 1}, nil
}

type mockImageEncoder struct {
	dim     int
	failAll error
}

func (m *mockImageEncoder) EncodeImage(_ context.Context, _ imagery.Image) (domain.EmbeddingResult, error) {
	if m.failAll != nil {
		return domain.EmbeddingResult{}, m.failAll
	}
	return domain.EmbeddingResult{Embedding: make([]float32, m.dim), TotalTokens: 1}, nil
}

type mockFetcher struct {
	failFor map[string]error // keyed by URL
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (imagery.Image, error) {
	if err := m.failFor[url]; err != nil {
		return imagery.Image{}, err
	}
	return imagery.New([]byte{0xFF, 0xD8, 0xFF}, "image/jpeg", 8, 8), nil
}

type fixture struct {
	ops     *ops
	catalog *mockCatalog
	writer  *mockWriter
	texts   *mockTextEncoder
	images  *mockImageEncoder
	fetcher *mockFetcher
}

const testDim = 4

func newTestService(t *testing.T) (*Service, *fixture) {
	t.Helper()
	o := &ops{}
	f := &fixture{
		ops:     o,
		catalog: &mockCatalog{ops: o, markErr: make(map[string]error)},
		writer:  &mockWriter{ops: o, putErr: make(map[string]error)},
		texts:   &mockTextEncoder{dim: testDim, failFor: make(map[string]error), emptyOn: make(map[string]bool)},
		images:  &mockImageEncoder{dim: testDim},
		fetcher: &mockFetcher{failFor: make(map[string]error)},
	}
	svc := New(f.catalog, f.writer, f.texts, f.images, f.fetcher, testDim, zap.NewNop())
	return svc, f
}

func pendingProducts(n int) []product.Product {
	out := make([]product.Product, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("p%d", i)
		out = append(out, product.New(
			id, "product "+id, "category",
			"https://img.example.com/"+id+".jpg", "", 1, true, "",
		))
	}
	return out
}
