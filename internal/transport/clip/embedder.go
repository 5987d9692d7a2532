// Package clip talks to an OpenAI-compatible multimodal embedding endpoint
// (Jina CLIP). Text goes through the standard embeddings API; images go
// through the same endpoint with an image input payload, which the SDK does
// not model, so that call is built by hand against the same base URL.
package clip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/imagery"
	"github.com/kailas-cloud/visearch/internal/metrics"
)

const defaultRequestTimeout = 30 * time.Second

// Embedder is a multimodal embedding provider over the OpenAI-compatible API.
type Embedder struct {
	client     *openai.Client
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	provider   string
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Provider   string
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewEmbedder creates a CLIP embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		provider:   cfg.Provider,
		logger:     cfg.Logger,
	}
}

// EncodeText implements domain.TextEncoder. An empty input short-circuits to
// an empty result without an API call.
func (e *Embedder) EncodeText(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if text == "" {
		return domain.EmbeddingResult{}, nil
	}

	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "text", "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, e.model, "api_error").Inc()
		return domain.EmbeddingResult{}, parseAPIError(err)
	}
	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "text", "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, e.model, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProvider)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "text", "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, e.model, "text").Observe(duration.Seconds())

	promptTokens := resp.Usage.PromptTokens
	totalTokens := resp.Usage.TotalTokens
	if totalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, e.model, "prompt").Add(float64(promptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, e.model, "total").Add(float64(totalTokens))
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: promptTokens,
		TotalTokens:  totalTokens,
	}, nil
}

// imageEmbeddingRequest is the multimodal input form the SDK does not cover.
type imageEmbeddingRequest struct {
	Model string       `json:"model"`
	Input []imageInput `json:"input"`
}

type imageInput struct {
	Image string `json:"image"` // base64-encoded bytes
}

type imageEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// EncodeImage implements domain.ImageEncoder.
func (e *Embedder) EncodeImage(ctx context.Context, img imagery.Image) (domain.EmbeddingResult, error) {
	if img.Empty() {
		return domain.EmbeddingResult{}, nil
	}

	payload := imageEmbeddingRequest{
		Model: e.model,
		Input: []imageInput{{Image: base64.StdEncoding.EncodeToString(img.Data())}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("marshal image request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body),
	)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("build image request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)

	start := time.Now()
	resp, err := e.httpClient.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "image", "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, e.model, "api_error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("image embedding request: %w: %w", err, domain.ErrEmbeddingProvider)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("read image embedding response: %w", domain.ErrEmbeddingProvider)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "image", "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, e.model, "api_error").Inc()
		detail := extractDetail(raw)
		if detail == "" {
			detail = string(raw)
		}
		return domain.EmbeddingResult{}, fmt.Errorf("embedding API error %d: %s: %w",
			resp.StatusCode, detail, domain.ErrEmbeddingProvider)
	}

	var parsed imageEmbeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("decode image embedding response: %w", domain.ErrEmbeddingProvider)
	}
	if len(parsed.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "image", "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, e.model, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProvider)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "image", "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, e.model, "image").Observe(duration.Seconds())
	if parsed.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, e.model, "prompt").Add(float64(parsed.Usage.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, e.model, "total").Add(float64(parsed.Usage.TotalTokens))
	}

	return domain.EmbeddingResult{
		Embedding:    parsed.Data[0].Embedding,
		PromptTokens: parsed.Usage.PromptTokens,
		TotalTokens:  parsed.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors wrap domain.ErrEmbeddingProvider for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrEmbeddingProvider

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("embedding API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("embedding request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
