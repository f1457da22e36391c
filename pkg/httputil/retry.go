package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// RetryableError marks a transient failure. Wait, if positive, overrides
// the next backoff delay, as a server's Retry-After header does.
type RetryableError struct {
	Err  error
	Wait time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Backoff is an exponential retry schedule.
type Backoff struct {
	Attempts int
	Delay    time.Duration // first delay, doubled after every attempt
	MaxDelay time.Duration // 0 means uncapped
}

// Retry runs fn until it succeeds, returns an error not wrapped in
// [RetryableError], or runs out of attempts. It returns the last error, or
// ctx.Err() if ctx ends while waiting.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay
	var lastErr error

	for i := range attempts {
		lastErr = fn()
		var re *RetryableError
		if lastErr == nil || !errors.As(lastErr, &re) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}

		wait := delay
		if re.Wait > 0 {
			wait = re.Wait
		}
		if b.MaxDelay > 0 {
			wait = min(wait, b.MaxDelay)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return lastErr
}

// retryAfter parses a Retry-After header given in seconds. HTTP dates are
// not supported and yield 0.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
