package indexing

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/product"
	"github.com/kailas-cloud/visearch/internal/domain/report"
	"github.com/kailas-cloud/visearch/internal/metrics"
)

// Service runs the indexing pipeline: scan pending products, embed text and
// image, write the embedding document, then flip the product state to Done.
//
// The write happens before the flip. A crash between the two leaves the
// product Pending with a stray embedding document; the next run re-embeds and
// overwrites it, so a product is never Done without its embeddings stored.
type Service struct {
	catalog    Catalog
	embeddings EmbeddingWriter
	texts      TextEncoder
	images     ImageEncoder
	fetcher    ImageFetcher
	dim        int
	logger     *zap.Logger

	running atomic.Bool
}

// New creates an indexing service for vectors of the given dimension.
func New(
	catalog Catalog, embeddings EmbeddingWriter,
	texts TextEncoder, images ImageEncoder, fetcher ImageFetcher,
	dim int, logger *zap.Logger,
) *Service {
	return &Service{
		catalog: catalog, embeddings: embeddings,
		texts: texts, images: images, fetcher: fetcher,
		dim: dim, logger: logger,
	}
}

// Running reports whether a run is currently in progress.
func (s *Service) Running() bool {
	return s.running.Load()
}

// Run processes every pending product sequentially and returns a summary.
// Item failures are absorbed into the report as skips; only a failed catalog
// scan aborts the run. At most one run executes at a time, a second caller
// gets ErrIndexingBusy.
func (s *Service) Run(ctx context.Context) (report.Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		metrics.IndexingRunsTotal.WithLabelValues("busy").Inc()
		return report.Report{}, domain.ErrIndexingBusy
	}
	defer s.running.Store(false)

	start := time.Now()

	products, err := s.catalog.ListPending(ctx)
	if err != nil {
		metrics.IndexingRunsTotal.WithLabelValues("aborted").Inc()
		return report.Report{}, fmt.Errorf("list pending products: %w", err)
	}

	metrics.IndexingPendingProducts.Set(float64(len(products)))
	s.logger.Info("Indexing run started", zap.Int("pending", len(products)))

	var rep report.Report
	for i := range products {
		p := &products[i]

		if reason := s.index(ctx, p); reason != "" {
			rep.AddSkip(p.ID(), reason)
			metrics.IndexingItemsTotal.WithLabelValues("skipped").Inc()
			s.logger.Warn("Product skipped",
				zap.String("product_id", p.ID()),
				zap.String("reason", reason),
			)
		} else {
			rep.AddStored()
			metrics.IndexingItemsTotal.WithLabelValues("stored").Inc()
		}

		metrics.IndexingPendingProducts.Set(float64(len(products) - i - 1))
	}

	metrics.IndexingRunsTotal.WithLabelValues("completed").Inc()
	metrics.IndexingRunDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("Indexing run completed",
		zap.Int("attempted", rep.Attempted()),
		zap.Int("stored", rep.Stored()),
		zap.Int("skipped", len(rep.Skipped())),
		zap.Duration("duration", time.Since(start)),
	)
	return rep, nil
}

// index embeds one product end to end. A non-empty return is the skip reason;
// the product stays Pending and the next run retries it.
func (s *Service) index(ctx context.Context, p *product.Product) string {
	textResult, err := s.texts.EncodeText(ctx, p.Name())
	if err != nil {
		return fmt.Sprintf("text embedding failed: %v", err)
	}
	if textResult.Empty() {
		return "text embedding empty"
	}
	if len(textResult.Embedding) != s.dim {
		return fmt.Sprintf("text embedding dimension %d, want %d", len(textResult.Embedding), s.dim)
	}

	img, err := s.fetcher.Fetch(ctx, p.ImageURL())
	if err != nil {
		return fmt.Sprintf("image fetch failed: %v", err)
	}

	imageResult, err := s.images.EncodeImage(ctx, img)
	if err != nil {
		return fmt.Sprintf("image embedding failed: %v", err)
	}
	if imageResult.Empty() {
		return "image embedding empty"
	}
	if len(imageResult.Embedding) != s.dim {
		return fmt.Sprintf("image embedding dimension %d, want %d", len(imageResult.Embedding), s.dim)
	}

	if err := s.embeddings.Put(ctx, p.ID(), textResult.Embedding, imageResult.Embedding); err != nil {
		return fmt.Sprintf("embedding write failed: %v", err)
	}
	if err := s.catalog.MarkIndexed(ctx, p.ID()); err != nil {
		return fmt.Sprintf("state flip failed: %v", err)
	}
	return ""
}
