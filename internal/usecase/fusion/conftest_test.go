package fusion

import (
	"context"
	"testing"

	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/hit"
	"github.com/kailas-cloud/visearch/internal/domain/imagery"
	"github.com/kailas-cloud/visearch/internal/domain/modality"
	"github.com/kailas-cloud/visearch/internal/domain/product"
)

type mockSearcher struct {
	hits map[modality.Modality][]hit.Hit
	errs map[modality.Modality]error

	calls []modality.Modality
}

func (m *mockSearcher) Search(
	_ context.Context, _ []float32, mod modality.Modality, _ int,
) ([]hit.Hit, error) {
	m.calls = append(m.calls, mod)
	if err := m.errs[mod]; err != nil {
		return nil, err
	}
	return m.hits[mod], nil
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
	searcher *mockSearcher
	texts    *mockTextEncoder
	images   *mockImageEncoder
}

func newTestService(t *testing.T) (*Service, *fixture) {
	t.Helper()
	f := &fixture{
		searcher: &mockSearcher{
			hits: make(map[modality.Modality][]hit.Hit),
			errs: make(map[modality.Modality]error),
		},
		texts:  &mockTextEncoder{},
		images: &mockImageEncoder{},
	}
	return New(f.searcher, f.texts, f.images), f
}

// textHit builds a hit as the text-side search would return it.
func textHit(id string, score float64, textVec, imageVec []float32) hit.Hit {
	return hit.New(id, score, modality.Text, product.Product{}, false, textVec, imageVec)
}

// imageHit builds a hit as the image-side search would return it.
func imageHit(id string, score float64, textVec, imageVec []float32) hit.Hit {
	return hit.New(id, score, modality.Image, product.Product{}, false, textVec, imageVec)
}

func imageryFixture() imagery.Image {
	return imagery.New([]byte{0xFF, 0xD8, 0xFF}, "image/jpeg", 8, 8)
}
