package upstream

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// Config holds the tuning knobs for the fetch chain.
type Config struct {
	Timeout          time.Duration
	MaxAttempts      int
	Backoff          time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// Fetcher composes the resilient fetch chain around a Client. A cache hit
// short-circuits the chain entirely; concurrent cache misses share a single
// in-flight call.
type Fetcher struct {
	run    fetchFunc
	cache  pageCache
	sf     singleflight.Group
	logger *slog.Logger
}

// NewFetcher builds the decorator chain breaker(timeout(retry(client))) and
// wraps it with the cache and single-flight group.
func NewFetcher(client *Client, cfg Config, logger *slog.Logger) *Fetcher {
	chain := withRetry(client.Fetch, cfg.MaxAttempts, cfg.Backoff, logger)
	chain = withTimeout(chain, cfg.Timeout)
	chain = withBreaker(chain, NewBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown), logger)
	return &Fetcher{run: chain, logger: logger}
}

// FetchAll returns the full catalog page. Failures never propagate: after
// the chain gives up (retries exhausted, breaker open, or timeout) the
// fallback produces an empty page, keeping ingestion "successful but empty".
func (f *Fetcher) FetchAll(ctx context.Context) (*CatalogPage, error) {
	if page, ok := f.cache.Get(); ok {
		cacheHits.Inc()
		f.logger.Debug("catalog cache hit")
		return page, nil
	}
	cacheMisses.Inc()

	v, err, _ := f.sf.Do("catalog", func() (any, error) {
		return f.run(ctx)
	})
	if err != nil {
		fallbackPages.Inc()
		f.logger.Warn("fetch failed, returning empty catalog page", slog.String("error", err.Error()))
		return &CatalogPage{Recipes: []ExternalRecipe{}}, nil
	}

	page := v.(*CatalogPage)
	f.cache.Set(page)
	f.logger.Info("fetched catalog", slog.Int("recipes", len(page.Recipes)))
	return page, nil
}

// InvalidateCache clears the cached page. Circuit breaker and retry state
// are unaffected.
func (f *Fetcher) InvalidateCache() {
	f.cache.Invalidate()
	f.logger.Info("catalog cache cleared")
}
