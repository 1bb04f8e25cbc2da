package upstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ladle_fetch_attempts_total",
		Help: "Total number of upstream fetch attempts",
	})
	fetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ladle_fetch_failures_total",
		Help: "Total number of failed upstream fetch attempts",
	})
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ladle_fetch_cache_hits_total",
		Help: "Total number of catalog cache hits",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ladle_fetch_cache_misses_total",
		Help: "Total number of catalog cache misses",
	})
	breakerOpens = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ladle_fetch_breaker_opens_total",
		Help: "Total number of times the upstream circuit breaker opened",
	})
	fallbackPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ladle_fetch_fallback_pages_total",
		Help: "Total number of empty fallback pages served after terminal fetch failures",
	})
)
