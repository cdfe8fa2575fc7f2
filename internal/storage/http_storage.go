package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"
)

// ImageFetcher downloads a photo from a URL
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) (File, error)
}

// HTTPImageFetcher implements ImageFetcher with retries on transient errors
type HTTPImageFetcher struct {
	client   *http.Client
	maxBytes int64
	attempts int
	backoff  time.Duration
}

// HTTPFetcherOption tunes an HTTPImageFetcher
type HTTPFetcherOption func(*HTTPImageFetcher)

// WithBackoff sets the base delay between attempts (attempt n waits n*d)
func WithBackoff(d time.Duration) HTTPFetcherOption {
	return func(h *HTTPImageFetcher) { h.backoff = d }
}

// WithTimeout sets the overall client timeout
func WithTimeout(d time.Duration) HTTPFetcherOption {
	return func(h *HTTPImageFetcher) { h.client.Timeout = d }
}

// NewHTTPImageFetcher creates a fetcher that reads at most maxBytes+1 bytes of
// a body, enough for the upload policy to see an oversized file.
func NewHTTPImageFetcher(maxBytes int64, opts ...HTTPFetcherOption) *HTTPImageFetcher {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	h := &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
		attempts: 3,
		backoff:  time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) (File, error) {
	resp, err := h.get(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}

	size := int64(len(data))
	if resp.ContentLength > size {
		size = resp.ContentLength
	}
	name := path.Base(resp.Request.URL.Path)
	return NewMemoryFileWithSize(name, resp.Header.Get("Content-Type"), size, data), nil
}

// get performs the request, retrying network errors and 5xx responses.
// 4xx responses are returned immediately.
func (h *HTTPImageFetcher) get(ctx context.Context, imageURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < h.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * h.backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/*;q=0.8")
		req.Header.Set("User-Agent", "Lumina-Face-Analysis/1.0")

		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusOK {
			return resp, nil
		}

		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, fmt.Errorf("client error: status code %d", resp.StatusCode)
		}
		lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("unknown error")
	}
	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", h.attempts, lastErr)
}
