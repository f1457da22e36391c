package cache

import (
	"errors"
	"time"

	"github.com/matzehuels/poagraph/pkg/httputil"
)

var (
	// ErrUnavailable is returned when a remote backend cannot be reached.
	ErrUnavailable = errors.New("cache backend unavailable")

	// ErrUnsupportedURL is returned by Open for an unknown URL scheme.
	ErrUnsupportedURL = errors.New("unsupported cache URL")
)

// backoff retries remote backend calls that fail with [unavailable].
var backoff = httputil.Backoff{Attempts: 3, Delay: 100 * time.Millisecond, MaxDelay: time.Second}

// unavailable marks err as a transient backend failure worth retrying.
func unavailable(err error) error {
	return &httputil.RetryableError{Err: errors.Join(ErrUnavailable, err)}
}
