package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Defaults for [Fetch].
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
	DefaultMaxDelay = 30 * time.Second
	DefaultTimeout  = 30 * time.Second

	// MaxBodyBytes caps a downloaded body.
	MaxBodyBytes = 256 << 20
)

// Fetcher downloads remote files with retries.
type Fetcher struct {
	Client  *http.Client
	Backoff Backoff
}

// NewFetcher returns a Fetcher with the default client and backoff.
func NewFetcher() *Fetcher {
	return &Fetcher{
		Client:  &http.Client{Timeout: DefaultTimeout},
		Backoff: Backoff{Attempts: DefaultAttempts, Delay: DefaultDelay, MaxDelay: DefaultMaxDelay},
	}
}

// IsURL reports whether path names an http or https resource.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// Fetch downloads url with [NewFetcher] defaults.
func Fetch(ctx context.Context, url string) ([]byte, error) {
	return NewFetcher().Fetch(ctx, url)
}

// Fetch downloads url, retrying network errors, 429 and 5xx responses. A
// Retry-After header sets the wait before the next attempt.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	var body []byte
	err := f.Backoff.Retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &RetryableError{Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("GET %s: %s", url, resp.Status)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return &RetryableError{Err: err, Wait: retryAfter(resp.Header)}
			}
			return err
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
		if err != nil {
			return &RetryableError{Err: err}
		}
		if len(data) > MaxBodyBytes {
			return fmt.Errorf("GET %s: body exceeds %d bytes", url, MaxBodyBytes)
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
