package upstream

import (
	"context"
	"log/slog"
	"time"
)

// fetchFunc is one stage of the fetch chain.
type fetchFunc func(ctx context.Context) (*CatalogPage, error)

// withRetry repeats fn up to maxAttempts times with exponential backoff
// starting at backoff. Non-retryable failures abort immediately, as does a
// done context (so the overall timeout stage cuts the loop short).
func withRetry(fn fetchFunc, maxAttempts int, backoff time.Duration, logger *slog.Logger) fetchFunc {
	return func(ctx context.Context) (*CatalogPage, error) {
		var lastErr error
		delay := backoff
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			page, err := fn(ctx)
			fetchAttempts.Inc()
			if err == nil {
				return page, nil
			}
			lastErr = err
			fetchFailures.Inc()
			if !retryable(err) {
				logger.Warn("fetch attempt failed, not retryable",
					slog.Int("attempt", attempt), slog.String("error", err.Error()))
				return nil, err
			}
			logger.Warn("fetch attempt failed",
				slog.Int("attempt", attempt), slog.Int("max_attempts", maxAttempts),
				slog.String("error", err.Error()))
			if attempt == maxAttempts {
				break
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}
		return nil, lastErr
	}
}

// withTimeout bounds fn (including any retries inside it) by d. A deadline
// overrun surfaces as a KindTimeout failure eligible for the breaker.
func withTimeout(fn fetchFunc, d time.Duration) fetchFunc {
	return func(ctx context.Context) (*CatalogPage, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		page, err := fn(ctx)
		if err != nil && ctx.Err() != nil {
			return nil, &FetchError{Kind: KindTimeout, Err: err}
		}
		return page, err
	}
}
