package upstream

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by Breaker.Allow while the circuit is open.
var ErrOpen = errors.New("upstream: circuit open")

// Breaker is a circuit breaker over consecutive upstream failures. After
// threshold failures in a row the circuit opens for cooldown; the first call
// after the cooldown acts as a half-open probe, and its failure reopens the
// circuit immediately.
type Breaker struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu        sync.Mutex
	failures  int
	openUntil time.Time
}

// NewBreaker creates a breaker tripping after threshold consecutive
// failures and staying open for cooldown.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	return &Breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

// Allow reports whether a call may proceed.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.now().Before(b.openUntil) {
		return ErrOpen
	}
	return nil
}

// Record feeds a call outcome into the breaker's health state.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.failures = 0
		b.openUntil = time.Time{}
		return
	}
	b.failures++
	if b.failures >= b.threshold {
		b.openUntil = b.now().Add(b.cooldown)
		breakerOpens.Inc()
	}
}

// withBreaker rejects calls immediately while the circuit is open and feeds
// every outcome back into the breaker.
func withBreaker(fn fetchFunc, b *Breaker, logger *slog.Logger) fetchFunc {
	return func(ctx context.Context) (*CatalogPage, error) {
		if err := b.Allow(); err != nil {
			logger.Warn("circuit open, rejecting fetch")
			return nil, &FetchError{Kind: KindBreakerOpen, Err: err}
		}
		page, err := fn(ctx)
		b.Record(err)
		return page, err
	}
}
