package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testFetcher(srv *httptest.Server) *Fetcher {
	return &Fetcher{Client: srv.Client(), Backoff: Backoff{Attempts: 3, Delay: time.Millisecond}}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(">r1\nACGT\n"))
	}))
	defer srv.Close()

	data, err := testFetcher(srv).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != ">r1\nACGT\n" {
		t.Errorf("Fetch() = %q", data)
	}
}

func TestFetchRetries(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
		wantErr   bool
	}{
		{"server error recovers", http.StatusBadGateway, 2, false},
		{"rate limit recovers", http.StatusTooManyRequests, 2, false},
		{"not found fails fast", http.StatusNotFound, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) == 1 {
					w.WriteHeader(tt.status)
					return
				}
				w.Write([]byte("ACGT\n"))
			}))
			defer srv.Close()

			_, err := testFetcher(srv).Fetch(context.Background(), srv.URL)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Fetch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestFetchGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testFetcher(srv).Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Fetch() should fail after all attempts")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Backoff{Attempts: 5, Delay: time.Hour}.Retry(ctx, func() error {
		calls++
		return &RetryableError{Err: errors.New("flaky")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryHonorsWait(t *testing.T) {
	b := Backoff{Attempts: 2, Delay: time.Hour, MaxDelay: time.Millisecond}
	calls := 0
	err := b.Retry(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &RetryableError{Err: errors.New("busy"), Wait: time.Minute}
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("Retry() = %v after %d calls, want success after 2", err, calls)
	}
}

func TestRetryAfter(t *testing.T) {
	tests := map[string]time.Duration{
		"":                              0,
		"3":                             3 * time.Second,
		"-1":                            0,
		"Wed, 21 Oct 2015 07:28:00 GMT": 0,
	}
	for in, want := range tests {
		h := http.Header{}
		if in != "" {
			h.Set("Retry-After", in)
		}
		if got := retryAfter(h); got != want {
			t.Errorf("retryAfter(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.org/reads.fa": true,
		"http://localhost/reads.fa.gz": true,
		"reads.fa":                     false,
		"-":                            false,
		"ftp://example.org/reads.fa":   false,
	}
	for in, want := range tests {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}
