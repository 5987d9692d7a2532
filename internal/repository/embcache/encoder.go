// Package embcache decorates the embedding provider with a key-value cache.
// It sits on the indexing path only: a crash between the embedding write and
// the state flip means the next run re-encodes the same content, and the
// cache turns that retry into a lookup.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/visearch/internal/db"
	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/imagery"
)

var (
	textKeyPrefix  = domain.KeyPrefix + "emb_cache:text:"
	imageKeyPrefix = domain.KeyPrefix + "emb_cache:image:"
)

// cacheTTL bounds how long an unused entry survives. Entries are re-written
// on every miss, so anything touched by a recent run stays warm.
const cacheTTL = 30 * 24 * time.Hour

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedEncoder caches embeddings in a key-value store, keyed by a content
// hash. Text and image entries live under separate key prefixes.
type CachedEncoder struct {
	inner      domain.Encoder
	store      store
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with labels "modality" and "result"
// ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Encoder,
	s store,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEncoder {
	return &CachedEncoder{
		inner:      inner,
		store:      s,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// EncodeText returns a cached embedding or calls the inner encoder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
func (c *CachedEncoder) EncodeText(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := textKeyPrefix + contentHash([]byte(text))

	if vec, ok := c.getFromCache(ctx, key); ok {
		c.incCache("text", "hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.incCache("text", "miss")

	result, err := c.inner.EncodeText(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("encode text: %w", err)
	}
	if !result.Empty() {
		c.putToCache(ctx, key, result.Embedding)
	}
	return result, nil
}

// EncodeImage returns a cached embedding or calls the inner encoder.
// The key is a hash of the encoded image bytes, so the same image fetched
// twice resolves to the same entry.
func (c *CachedEncoder) EncodeImage(ctx context.Context, img imagery.Image) (domain.EmbeddingResult, error) {
	key := imageKeyPrefix + contentHash(img.Data())

	if vec, ok := c.getFromCache(ctx, key); ok {
		c.incCache("image", "hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.incCache("image", "miss")

	result, err := c.inner.EncodeImage(ctx, img)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("encode image: %w", err)
	}
	if !result.Empty() {
		c.putToCache(ctx, key, result.Embedding)
	}
	return result, nil
}

func (c *CachedEncoder) incCache(modality, result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(modality, result).Inc()
	}
}

func contentHash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func (c *CachedEncoder) getFromCache(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (c *CachedEncoder) putToCache(ctx context.Context, key string, vec []float32) {
	if err := c.store.SetWithTTL(ctx, key, vectorToCacheBytes(vec), cacheTTL); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func vectorToCacheBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
