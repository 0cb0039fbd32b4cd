// Package imagesource loads image bytes referenced by reports. Sources are
// fetchable URLs, storage keys resolved by a Resolver, or local paths.
// Image loss is never fatal to document generation; callers log and move on.
package imagesource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// Resolver turns a storage key (or already fetchable URL) into a URL the
// Fetcher can retrieve. Implemented by the surrounding infrastructure.
type Resolver interface {
	ResolveURL(ctx context.Context, keyOrURL string) (string, error)
}

// Fetcher retrieves raw bytes from a resolved URL.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Loader combines resolution and fetching, with a direct read for local
// paths. It is the single entry point the rendering canvas uses.
type Loader struct {
	Resolver Resolver
	Fetcher  Fetcher
}

// Load returns the bytes behind source. Local paths are read directly;
// everything else goes through Resolver then Fetcher.
func (l *Loader) Load(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, fmt.Errorf("empty image source")
	}
	if isLocalPath(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read local image %s: %w", source, err)
		}
		return data, nil
	}

	url := source
	if l.Resolver != nil {
		resolved, err := l.Resolver.ResolveURL(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve image source %s: %w", source, err)
		}
		url = resolved
	}
	if l.Fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured for remote image %s", source)
	}
	data, err := l.Fetcher.FetchBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image %s: %w", source, err)
	}
	return data, nil
}

func isLocalPath(source string) bool {
	if strings.Contains(source, "://") {
		return false
	}
	_, err := os.Stat(source)
	return err == nil
}

// PassthroughResolver returns URLs unchanged. Useful when reports only
// carry fully qualified image URLs.
type PassthroughResolver struct{}

func (PassthroughResolver) ResolveURL(_ context.Context, keyOrURL string) (string, error) {
	return keyOrURL, nil
}

// HTTPFetcher retrieves remote images with bounded retries and exponential
// backoff. A slow or failing source delays but never aborts a render; the
// caller decides what to do with the returned error.
type HTTPFetcher struct {
	Client     *http.Client
	MaxRetries int
	Backoff    time.Duration
	MaxBytes   int64
}

// NewHTTPFetcher returns a fetcher with the defaults used in production:
// four attempts, one second initial backoff, 15s per-request timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:     &http.Client{Timeout: 15 * time.Second},
		MaxRetries: 4,
		Backoff:    time.Second,
		MaxBytes:   20 << 20,
	}
}

// FetchBytes performs a GET with retries. Non-2xx responses and transport
// errors are retried with doubling backoff until the attempt budget runs
// out; context cancellation aborts the wait immediately.
func (f *HTTPFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	maxRetries := f.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	backoff := f.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		data, err := f.fetchOnce(ctx, client, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		slog.Warn("Image fetch failed, will retry.",
			"url", url,
			"attempt", i+1,
			"maxRetries", maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("fetch for %s failed after all retries: %w", url, lastErr)
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body := io.Reader(resp.Body)
	if f.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, f.MaxBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}
