package ai

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/redgit/redgit/internal/logger"
)

const (
	maxRetries     = 3
	initialBackoff = 2 * time.Second
	backoffFactor  = 2
)

// retryWithBackoff runs fn up to maxRetries+1 times with exponential
// backoff, retrying only transient API failures. Context cancellation
// stops the loop immediately.
func retryWithBackoff(ctx context.Context, fn func(context.Context) error) error {
	backoff := initialBackoff

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("retrying AI call", "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= backoffFactor
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
	}
	return err
}

// isRetryable reports whether an API error is worth retrying. Rate limits,
// overload and server errors are transient; auth and validation errors
// are not.
func isRetryable(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	// Network-level failures come through as plain errors.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
