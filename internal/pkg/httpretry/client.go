// Package httpretry provides an HTTP client that automatically retries
// transient upstream failures with linear backoff.
package httpretry

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both *http.Client and *RetryClient satisfy this interface.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryClient wraps an HTTPDoer with retry logic.
//
// Retryable failures are HTTP 429/500/503 and client-side timeouts; the
// delay before attempt N is N times the base delay (linear backoff).
// Client errors other than 429 are returned immediately.
type RetryClient struct {
	client     HTTPDoer
	maxRetries int
	baseDelay  time.Duration
}

// NewRetryClient creates a new RetryClient that wraps the given HTTPDoer.
// If client is nil, a default http.Client with 30s timeout is used.
// maxRetries is the number of retry attempts after the initial request
// (default 2).
func NewRetryClient(client HTTPDoer, maxRetries int) *RetryClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxRetries <= 0 {
		maxRetries = 2
	}
	return &RetryClient{
		client:     client,
		maxRetries: maxRetries,
		baseDelay:  500 * time.Millisecond,
	}
}

// SetBaseDelay overrides the backoff base delay (useful for testing).
func (rc *RetryClient) SetBaseDelay(d time.Duration) { rc.baseDelay = d }

// Do executes the HTTP request with retry logic. On the final attempt a
// retryable status is returned as-is so the caller can read the body and
// handle the error.
func (rc *RetryClient) Do(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= rc.maxRetries; attempt++ {
		if req.Context().Err() != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, req.Context().Err()
		}

		if attempt > 0 {
			// Reset request body for retry if applicable
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("httpretry: failed to reset request body: %w", err)
				}
				req.Body = body
			}

			delay := time.Duration(attempt) * rc.baseDelay
			log.Printf("httpretry: retry attempt %d/%d for %s %s%s (waiting %s)",
				attempt, rc.maxRetries, req.Method, req.URL.Host, req.URL.Path, delay)

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-req.Context().Done():
				timer.Stop()
				if lastErr != nil {
					return nil, lastErr
				}
				return nil, req.Context().Err()
			}
		}

		resp, err := rc.client.Do(req)
		if err != nil {
			lastErr = err
			// Context cancelled or expired by the caller, do not retry
			if req.Context().Err() != nil {
				return nil, err
			}
			if isTimeout(err) {
				continue
			}
			// Hard network failure, surface immediately
			return nil, err
		}

		// Non-retryable status code: return immediately (success or client error)
		if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		// Last attempt: hand the retryable response back to the caller
		if attempt == rc.maxRetries {
			return resp, nil
		}

		// Drain body for connection reuse before retrying
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("httpretry: server returned retryable status %d", resp.StatusCode)
	}

	return nil, lastErr
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isRetryableStatus reports whether the status code indicates a transient
// upstream failure. Retries: 429, 500, 503. Does NOT retry other 4xx.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return true
	default:
		return false
	}
}
