package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/visearch/internal/config"
	"github.com/kailas-cloud/visearch/internal/db/redis"
	"github.com/kailas-cloud/visearch/internal/domain"
	logpkg "github.com/kailas-cloud/visearch/internal/logger"
	"github.com/kailas-cloud/visearch/internal/metrics"
	catalogrepo "github.com/kailas-cloud/visearch/internal/repository/catalog"
	embeddingrepo "github.com/kailas-cloud/visearch/internal/repository/embedding"
	"github.com/kailas-cloud/visearch/internal/repository/embcache"
	chiTransport "github.com/kailas-cloud/visearch/internal/transport/chi"
	"github.com/kailas-cloud/visearch/internal/transport/clip"
	"github.com/kailas-cloud/visearch/internal/transport/httpimg"
	cataloguc "github.com/kailas-cloud/visearch/internal/usecase/catalog"
	fusionuc "github.com/kailas-cloud/visearch/internal/usecase/fusion"
	healthuc "github.com/kailas-cloud/visearch/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/visearch/internal/usecase/indexing"
	retrievaluc "github.com/kailas-cloud/visearch/internal/usecase/retrieval"
	"github.com/kailas-cloud/visearch/internal/version"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting visearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := redis.NewStore(redis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIndexingMetrics()

	embedder := clip.NewEmbedder(&clip.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Timeout:    time.Duration(cfg.Embedding.RequestSec) * time.Second,
		Logger:     logger,
	})
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// The indexing path re-embeds unchanged catalog content on every run, so
	// it goes through the cache. Query embeddings stay uncached.
	var indexEncoder domain.Encoder = embedder
	if !cfg.Embedding.CacheDisabled {
		indexEncoder = embcache.New(embedder, store, metrics.EmbeddingCacheTotal, logger)
	}

	dim := cfg.Embedding.Dimensions
	catalogRepo := catalogrepo.New(store)
	embeddingRepo := embeddingrepo.New(store, dim).WithHNSW(embeddingrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})

	if err := catalogRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure product index", zap.Error(err))
	}
	if err := embeddingRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure embedding index", zap.Error(err))
	}

	fetcher := httpimg.NewFetcher(&httpimg.Config{
		Timeout:  time.Duration(cfg.Imaging.FetchTimeoutSec) * time.Second,
		MaxBytes: cfg.Imaging.MaxBytes,
		Logger:   logger,
	})

	retrievalSvc := retrievaluc.New(embeddingRepo, catalogRepo, embedder, embedder, dim, logger)
	fusionSvc := fusionuc.New(retrievalSvc, embedder, embedder)
	indexingSvc := indexinguc.New(
		catalogRepo, embeddingRepo, indexEncoder, indexEncoder, fetcher, dim, logger,
	)
	catalogSvc := cataloguc.New(catalogRepo, catalogRepo).
		WithMaxImportSize(cfg.Index.MaxImportSize)
	healthSvc := healthuc.New(store, embedder, catalogRepo)

	server := chiTransport.NewServer(
		retrievalSvc, fusionSvc, indexingSvc, catalogSvc, healthSvc,
		chiTransport.Config{
			DefaultLimit:   cfg.Search.DefaultLimit,
			MaxLimit:       cfg.Search.MaxLimit,
			DefaultAlpha:   cfg.Search.DefaultAlpha,
			MaxUploadBytes: cfg.Imaging.MaxBytes,
		},
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Router())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
