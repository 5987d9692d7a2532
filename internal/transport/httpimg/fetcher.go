// Package httpimg downloads product images and validates them before they
// reach the embedding provider.
package httpimg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	// Register decoders for the formats the catalog actually carries.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"go.uber.org/zap"

	"github.com/kailas-cloud/visearch/internal/domain/imagery"
)

const (
	defaultTimeout = 15 * time.Second
	// DefaultMaxBytes caps a single image download.
	DefaultMaxBytes = 10 << 20
)

// Fetcher downloads images over HTTP.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	logger   *zap.Logger
}

// Config holds fetcher settings.
type Config struct {
	Timeout  time.Duration
	MaxBytes int64
	Logger   *zap.Logger
}

// NewFetcher creates an image fetcher.
func NewFetcher(cfg *Config) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		logger:   cfg.Logger,
	}
}

// Fetch downloads the image at url and validates it.
func (f *Fetcher) Fetch(ctx context.Context, url string) (imagery.Image, error) {
	if url == "" {
		return imagery.Image{}, fmt.Errorf("image url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return imagery.Image{}, fmt.Errorf("build image request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return imagery.Image{}, fmt.Errorf("fetch image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return imagery.Image{}, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return imagery.Image{}, fmt.Errorf("read image body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return imagery.Image{}, fmt.Errorf("image exceeds %d bytes", f.maxBytes)
	}

	img, err := Decode(data)
	if err != nil {
		return imagery.Image{}, err
	}

	f.logger.Debug("Image fetched",
		zap.String("url", url),
		zap.String("mime", img.MIME()),
		zap.Int("bytes", len(data)),
	)
	return img, nil
}

// Decode validates raw image bytes by decoding the header and returns the
// payload with its detected type and dimensions. The bytes themselves are
// kept as received.
func Decode(data []byte) (imagery.Image, error) {
	if len(data) == 0 {
		return imagery.Image{}, fmt.Errorf("image payload is empty")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return imagery.Image{}, fmt.Errorf("decode image: %w", err)
	}
	return imagery.New(data, "image/"+format, cfg.Width, cfg.Height), nil
}
