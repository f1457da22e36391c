// Package httputil fetches remote inputs over HTTP.
//
// [Fetch] downloads a URL and retries transient failures:
//
//   - network errors
//   - 5xx responses
//   - 429 rate limit responses
//
// Other 4xx responses fail immediately. [Backoff.Retry] is the loop behind
// it and can wrap any operation whose transient failures are marked with
// [RetryableError]:
//
//	b := httputil.Backoff{Attempts: 3, Delay: time.Second}
//	err := b.Retry(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
package httputil
