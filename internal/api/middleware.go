// Package api implements the Ladle REST API using chi.
package api

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit returns middleware that bounds the request rate with a shared
// token bucket. Rejected requests get a 429 envelope with a Retry-After
// hint.
func RateLimit(limit float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(limit), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
