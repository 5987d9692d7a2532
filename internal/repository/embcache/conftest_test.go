package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/imagery"
)

// mockEncoder is the inner provider.
type mockEncoder struct {
	result     domain.EmbeddingResult
	err        error
	textCalls  int
	imageCalls int
}

func (m *mockEncoder) EncodeText(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.textCalls++
	return m.result, m.err
}

func (m *mockEncoder) EncodeImage(_ context.Context, _ imagery.Image) (domain.EmbeddingResult, error) {
	m.imageCalls++
	return m.result, m.err
}

// mockKV is the cache backend.
type mockKV struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKV) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockKV) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedEncoder(t *testing.T, inner domain.Encoder) (*CachedEncoder, *mockKV) {
	t.Helper()
	ms := &mockKV{}
	return New(inner, ms, nil, zap.NewNop()), ms
}
