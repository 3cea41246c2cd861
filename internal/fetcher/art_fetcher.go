package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const _maxImageSize = 10 * 1024 * 1024 // 10 MB

var (
	// ErrEmptyReference is returned for an empty cover reference
	ErrEmptyReference = errors.New("empty image reference")
	// ErrImageTooLarge is returned when the source holds more than 10 MB
	ErrImageTooLarge = errors.New("image too large")
)

// ArtFetcher reads cover art from local paths, file:// URIs and HTTP(S) URLs
type ArtFetcher struct {
	logger *zap.Logger
	client *http.Client
}

// NewArtFetcher creates a new fetcher instance
func NewArtFetcher(logger *zap.Logger) *ArtFetcher {
	return &ArtFetcher{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second, // a render pass must not hang on a slow server
		},
	}
}

// Fetch returns the image data for ref. Sources over 10 MB are rejected.
func (f *ArtFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, ErrEmptyReference
	}

	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return f.fetchHTTP(ctx, ref)
	case strings.HasPrefix(ref, "file://"):
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("invalid file uri: %w", err)
		}
		return f.readFile(u.Path)
	default:
		return f.readFile(ref)
	}
}

func (f *ArtFetcher) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	data, err := readLimited(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	f.logger.Debug("Image read from disk", zap.Int("bytes", len(data)), zap.String("path", path))
	return data, nil
}

func (f *ArtFetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "mucwidget/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") {
		return nil, fmt.Errorf("url is not an image: %s", resp.Header.Get("Content-Type"))
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	f.logger.Debug("Image fetched successfully", zap.Int("bytes", len(data)), zap.String("url", rawURL))
	return data, nil
}

// readLimited reads one byte past the limit so oversized input is an error, not a truncated image
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, _maxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > _maxImageSize {
		return nil, fmt.Errorf("%w: over %d bytes", ErrImageTooLarge, _maxImageSize)
	}
	return data, nil
}
