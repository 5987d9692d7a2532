// Package chi wires the search, indexing and catalog use cases into an HTTP
// API. Handlers translate transport concerns (JSON, multipart uploads, status
// codes) and keep all semantics in the use case layer.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/batch"
	"github.com/kailas-cloud/visearch/internal/domain/hit"
	"github.com/kailas-cloud/visearch/internal/domain/imagery"
	"github.com/kailas-cloud/visearch/internal/domain/product"
	"github.com/kailas-cloud/visearch/internal/domain/report"
	"github.com/kailas-cloud/visearch/internal/transport/httpimg"
	"github.com/kailas-cloud/visearch/internal/usecase/health"
)

const (
	defaultSearchLimit = 30
	defaultMaxLimit    = 100
	defaultAlpha       = 0.7
	defaultMaxUpload   = 10 << 20
)

// Retriever runs single-modality searches.
type Retriever interface {
	SearchText(ctx context.Context, query string, limit int) ([]hit.Hit, error)
	SearchImage(ctx context.Context, img imagery.Image, limit int) ([]hit.Hit, error)
}

// Fuser runs combined text+image searches.
type Fuser interface {
	SearchMultimodal(ctx context.Context, query string, img imagery.Image, alpha float64, limit int) ([]hit.Hit, error)
}

// Indexer drives the embedding pipeline.
type Indexer interface {
	Run(ctx context.Context) (report.Report, error)
	Running() bool
}

// Cataloger loads products into the catalog and reads them back.
type Cataloger interface {
	Import(ctx context.Context, items []product.Product) []batch.Result
	Get(ctx context.Context, id string) (product.Product, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// Config holds transport-level settings.
type Config struct {
	DefaultLimit   int
	MaxLimit       int
	DefaultAlpha   float64
	MaxUploadBytes int64
}

// Server handles HTTP requests.
type Server struct {
	retriever Retriever
	fuser     Fuser
	indexer   Indexer
	importer  Cataloger
	health    HealthChecker
	cfg       Config
	logger    *zap.Logger

	mu      sync.Mutex
	lastRun *reportDTO
}

// NewServer creates an HTTP server over the given use cases.
func NewServer(
	retriever Retriever, fuser Fuser, indexer Indexer,
	importer Cataloger, healthChecker HealthChecker,
	cfg Config, logger *zap.Logger,
) *Server {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = defaultSearchLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = defaultMaxLimit
	}
	if cfg.DefaultAlpha <= 0 {
		cfg.DefaultAlpha = defaultAlpha
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUpload
	}
	return &Server{
		retriever: retriever,
		fuser:     fuser,
		indexer:   indexer,
		importer:  importer,
		health:    healthChecker,
		cfg:       cfg,
		logger:    logger,
	}
}

// Router builds the HTTP route tree. Cross-cutting middleware (recovery,
// request logging, auth, metrics) is applied by the composition root.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/search/text", s.handleSearchText)
	r.Post("/search/image", s.handleSearchImage)
	r.Post("/search/multimodal", s.handleSearchMultimodal)

	r.Post("/index", s.handleStartIndex)
	r.Get("/index/status", s.handleIndexStatus)

	r.Post("/products", s.handleImportProducts)
	r.Get("/products/{id}", s.handleGetProduct)

	return r
}

func (s *Server) handleSearchText(w http.ResponseWriter, r *http.Request) {
	var req textSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query must not be empty")
		return
	}

	limit, ok := s.resolveLimit(w, req.Limit)
	if !ok {
		return
	}

	hits, err := s.retriever.SearchText(r.Context(), req.Query, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hitsToResponse(hits))
}

func (s *Server) handleSearchImage(w http.ResponseWriter, r *http.Request) {
	img, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	limit, ok := s.resolveLimit(w, formInt(r, "limit"))
	if !ok {
		return
	}

	hits, err := s.retriever.SearchImage(r.Context(), img, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hitsToResponse(hits))
}

func (s *Server) handleSearchMultimodal(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart form")
		return
	}

	query := r.FormValue("query")
	img, hasImage, ok := s.readOptionalUpload(w, r)
	if !ok {
		return
	}
	if query == "" && !hasImage {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query or file is required")
		return
	}

	alpha := s.cfg.DefaultAlpha
	if raw := r.FormValue("alpha"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "alpha must be a number")
			return
		}
		alpha = parsed
	}

	limit, ok := s.resolveLimit(w, formInt(r, "limit"))
	if !ok {
		return
	}

	hits, err := s.fuser.SearchMultimodal(r.Context(), query, img, alpha, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hitsToResponse(hits))
}

func (s *Server) handleStartIndex(w http.ResponseWriter, r *http.Request) {
	if s.indexer.Running() {
		writeError(w, http.StatusConflict, codeIndexingBusy, domain.ErrIndexingBusy.Error())
		return
	}

	// The run outlives the request. The pipeline's own guard resolves the
	// race between two concurrent accepts.
	go func() {
		rep, err := s.indexer.Run(context.Background())
		if err != nil {
			if !errors.Is(err, domain.ErrIndexingBusy) {
				s.logger.Error("Indexing run failed", zap.Error(err))
			}
			return
		}
		dto := reportToDTO(rep)
		s.mu.Lock()
		s.lastRun = &dto
		s.mu.Unlock()
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleIndexStatus(w http.ResponseWriter, r *http.Request) {
	resp := indexStatusResponse{Running: s.indexer.Running()}
	s.mu.Lock()
	resp.LastRun = s.lastRun
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImportProducts(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	if len(req.Products) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "products must not be empty")
		return
	}

	items := make([]product.Product, len(req.Products))
	for i, item := range req.Products {
		items[i] = importItemToProduct(item)
	}

	results := s.importer.Import(r.Context(), items)
	writeJSON(w, http.StatusOK, importResultsToResponse(results))
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.importer.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productToDTO(&p))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rep := s.health.Check(r.Context())

	resp := healthResponse{
		Status: string(rep.Status),
		Checks: make(map[string]string, len(rep.Checks)),
	}
	for name, result := range rep.Checks {
		resp.Checks[name] = string(result)
	}
	if rep.PendingProducts >= 0 {
		pending := rep.PendingProducts
		resp.PendingProducts = &pending
	}

	status := http.StatusOK
	if rep.Status != health.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// resolveLimit applies the default and cap. Zero means "not set".
func (s *Server) resolveLimit(w http.ResponseWriter, limit int) (int, bool) {
	if limit < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be positive")
		return 0, false
	}
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	return limit, true
}

// readUpload reads the required "file" part and validates it as an image.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (imagery.Image, bool) {
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart form")
		return imagery.Image{}, false
	}
	img, hasImage, ok := s.readOptionalUpload(w, r)
	if !ok {
		return imagery.Image{}, false
	}
	if !hasImage {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "file is required")
		return imagery.Image{}, false
	}
	return img, true
}

// readOptionalUpload reads the "file" part if present. The form must already
// be parsed. A present but undecodable file is a client error.
func (s *Server) readOptionalUpload(w http.ResponseWriter, r *http.Request) (imagery.Image, bool, bool) {
	file, _, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return imagery.Image{}, false, true
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid file upload")
		return imagery.Image{}, false, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "read file upload")
		return imagery.Image{}, false, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "file exceeds upload limit")
		return imagery.Image{}, false, false
	}

	img, err := httpimg.Decode(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "file is not a supported image")
		return imagery.Image{}, false, false
	}
	return img, true, true
}

// formInt parses an optional integer form value. Zero means "not set";
// unparsable input maps to -1 so resolveLimit rejects it.
func formInt(r *http.Request, key string) int {
	raw := r.FormValue(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}
