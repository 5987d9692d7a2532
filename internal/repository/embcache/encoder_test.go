package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/visearch/internal/db"
	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/imagery"
)

func TestEncodeText_CacheMiss(t *testing.T) {
	inner := &mockEncoder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, ms := newTestCachedEncoder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, db.ErrKeyNotFound
	}
	var setCalled bool
	ms.setFn = func(_ context.Context, key string, _ []byte, ttl time.Duration) error {
		setCalled = true
		if !strings.HasPrefix(key, textKeyPrefix) {
			t.Errorf("text entry keyed under %q", key)
		}
		if ttl <= 0 {
			t.Errorf("cache entries must expire, got ttl=%v", ttl)
		}
		return nil
	}

	result, err := ce.EncodeText(context.Background(), "instant noodles")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", result.Embedding)
	}
	if result.TotalTokens != 10 {
		t.Fatalf("expected TotalTokens=10, got %d", result.TotalTokens)
	}
	if !setCalled {
		t.Fatal("expected SET to be called for cache put")
	}
}

func TestEncodeText_CacheHit(t *testing.T) {
	inner := &mockEncoder{result: domain.EmbeddingResult{
		Embedding: []float32{0.1, 0.2, 0.3},
	}}
	ce, ms := newTestCachedEncoder(t, inner)

	cached := vectorToCacheBytes([]float32{0.4, 0.5, 0.6})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	result, err := ce.EncodeText(context.Background(), "instant noodles")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.4 {
		t.Fatalf("expected cached vector, got: %v", result.Embedding)
	}
	if result.TotalTokens != 0 {
		t.Fatalf("expected TotalTokens=0 on cache hit, got %d", result.TotalTokens)
	}
	if inner.textCalls != 0 {
		t.Fatalf("inner must not be called on a hit, got %d calls", inner.textCalls)
	}
}

func TestEncodeText_InnerError(t *testing.T) {
	inner := &mockEncoder{err: errors.New("provider down")}
	ce, ms := newTestCachedEncoder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, db.ErrKeyNotFound
	}

	if _, err := ce.EncodeText(context.Background(), "x"); err == nil {
		t.Fatal("expected error from inner encoder")
	}
}

func TestEncodeText_EmptyResultNotCached(t *testing.T) {
	inner := &mockEncoder{result: domain.EmbeddingResult{}}
	ce, ms := newTestCachedEncoder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, db.ErrKeyNotFound
	}
	var setCalled bool
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		setCalled = true
		return nil
	}

	result, err := ce.EncodeText(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Empty() {
		t.Fatalf("expected empty result, got %v", result.Embedding)
	}
	if setCalled {
		t.Fatal("empty embeddings must not be cached")
	}
}

func TestEncodeImage_KeyedByContent(t *testing.T) {
	inner := &mockEncoder{result: domain.EmbeddingResult{Embedding: []float32{0.7}}}
	ce, ms := newTestCachedEncoder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, db.ErrKeyNotFound
	}
	var gotKey string
	ms.setFn = func(_ context.Context, key string, _ []byte, _ time.Duration) error {
		gotKey = key
		return nil
	}

	img := imagery.New([]byte{0xFF, 0xD8, 0xFF}, "image/jpeg", 10, 10)
	if _, err := ce.EncodeImage(context.Background(), img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := imageKeyPrefix + contentHash(img.Data())
	if gotKey != want {
		t.Errorf("cache key = %q, want %q", gotKey, want)
	}
	if inner.imageCalls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.imageCalls)
	}
}

func TestEncodeImage_CacheHit(t *testing.T) {
	inner := &mockEncoder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	ce, ms := newTestCachedEncoder(t, inner)

	cached := vectorToCacheBytes([]float32{0.9, 0.8})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	img := imagery.New([]byte("payload"), "image/png", 5, 5)
	result, err := ce.EncodeImage(context.Background(), img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 2 || result.Embedding[0] != 0.9 {
		t.Fatalf("expected cached vector, got %v", result.Embedding)
	}
	if inner.imageCalls != 0 {
		t.Fatalf("inner must not be called on a hit, got %d calls", inner.imageCalls)
	}
}

func TestGetFromCache_CorruptData(t *testing.T) {
	inner := &mockEncoder{result: domain.EmbeddingResult{Embedding: []float32{0.3}}}
	ce, ms := newTestCachedEncoder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte{0x01, 0x02, 0x03}, nil // not a multiple of 4
	}

	result, err := ce.EncodeText(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Embedding[0] != 0.3 {
		t.Fatalf("corrupt cache entry must fall through to inner, got %v", result.Embedding)
	}
}
