package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	maxRetries     = 3
	baseRetryDelay = 200 * time.Millisecond
)

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// doWithRetry issues the request built by build, retrying on transient
// failures (network errors, 429, 5xx) with doubling backoff. The request is
// rebuilt for every attempt so the body can be re-read.
func doWithRetry(ctx context.Context, client *http.Client, build func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error
	delay := baseRetryDelay
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if retryableStatus(resp.StatusCode) {
			lastErr = fmt.Errorf("llm: transient status %s", resp.Status)
			_ = resp.Body.Close()
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("llm: retries exhausted: %w", lastErr)
}
