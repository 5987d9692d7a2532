package chi

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/visearch/internal/domain/batch"
	"github.com/kailas-cloud/visearch/internal/domain/hit"
	"github.com/kailas-cloud/visearch/internal/domain/imagery"
	"github.com/kailas-cloud/visearch/internal/domain/modality"
	"github.com/kailas-cloud/visearch/internal/domain/product"
	"github.com/kailas-cloud/visearch/internal/domain/report"
	"github.com/kailas-cloud/visearch/internal/usecase/health"
)

type mockRetriever struct {
	hits []hit.Hit
	err  error

	gotQuery string
	gotImage imagery.Image
	gotLimit int
}

func (m *mockRetriever) SearchText(_ context.Context, query string, limit int) ([]hit.Hit, error) {
	m.gotQuery = query
	m.gotLimit = limit
	return m.hits, m.err
}

func (m *mockRetriever) SearchImage(_ context.Context, img imagery.Image, limit int) ([]hit.Hit, error) {
	m.gotImage = img
	m.gotLimit = limit
	return m.hits, m.err
}

type mockFuser struct {
	hits []hit.Hit
	err  error

	gotQuery string
	gotImage imagery.Image
	gotAlpha float64
	gotLimit int
}

func (m *mockFuser) SearchMultimodal(
	_ context.Context, query string, img imagery.Image, alpha float64, limit int,
) ([]hit.Hit, error) {
	m.gotQuery = query
	m.gotImage = img
	m.gotAlpha = alpha
	m.gotLimit = limit
	return m.hits, m.err
}

type mockIndexer struct {
	running bool
	report  report.Report
	err     error
	started chan struct{}
}

func (m *mockIndexer) Run(context.Context) (report.Report, error) {
	if m.started != nil {
		defer close(m.started)
	}
	return m.report, m.err
}

func (m *mockIndexer) Running() bool { return m.running }

type mockImporter struct {
	results []batch.Result
	got     []product.Product

	record product.Product
	getErr error
}

func (m *mockImporter) Import(_ context.Context, items []product.Product) []batch.Result {
	m.got = items
	return m.results
}

func (m *mockImporter) Get(_ context.Context, _ string) (product.Product, error) {
	return m.record, m.getErr
}

type mockHealth struct {
	report health.Report
}

func (m *mockHealth) Check(context.Context) health.Report { return m.report }

type fixture struct {
	retriever *mockRetriever
	fuser     *mockFuser
	indexer   *mockIndexer
	importer  *mockImporter
	health    *mockHealth
	server    *Server
	handler   http.Handler
}

func newTestServer(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		retriever: &mockRetriever{},
		fuser:     &mockFuser{},
		indexer:   &mockIndexer{},
		importer:  &mockImporter{},
		health: &mockHealth{report: health.Report{
			Status:          health.Healthy,
			Checks:          map[string]health.CheckResult{"database": health.CheckOK},
			PendingProducts: 0,
		}},
	}
	f.server = NewServer(f.retriever, f.fuser, f.indexer, f.importer, f.health, cfg, zap.NewNop())
	f.handler = f.server.Router()
	return f
}

// sampleReport is an indexing run with two stores and one skip.
func sampleReport() report.Report {
	var r report.Report
	r.AddStored()
	r.AddStored()
	r.AddSkip("p3", "image fetch failed")
	return r
}

func sampleHits() []hit.Hit {
	p := product.New("p1", "wireless mouse", "electronics",
		"https://img.example.com/p1.jpg", "https://shop.example.com/p1", 24.9, true, "")
	return []hit.Hit{
		hit.New("p1", 0.91, modality.Text, p, true, nil, nil),
		hit.New("p2", 0.42, modality.Text, product.Product{}, false, nil, nil),
	}
}

// pngUpload builds a multipart body with a real PNG under "file" plus extra
// form fields.
func pngUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", "query.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if err := png.Encode(part, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// formOnly builds a multipart body without a file part.
func formOnly(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}
