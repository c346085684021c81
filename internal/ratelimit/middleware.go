package ratelimit

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
)

// Middleware returns an HTTP middleware that rate limits requests per
// client IP using the provided Limiter. It is applied to the public auth
// endpoints to slow down credential stuffing and token guessing.
//
// Rate-limit headers are always set on the response:
//
//	X-RateLimit-Limit:     maximum requests allowed in the window
//	X-RateLimit-Remaining: tokens remaining in the current window
//	X-RateLimit-Reset:     Unix timestamp when the bucket is fully replenished
//
// When the limit is exceeded the middleware responds with HTTP 429.
func Middleware(limiter *Limiter, onReject ...func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			// Always set headers so callers can inspect their quota.
			limit, remaining, resetAt := limiter.Status(key)
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetAt.Unix()))

			if !limiter.Allow(key) {
				for _, fn := range onReject {
					fn()
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success":    false,
					"message":    "Too many requests. Try again later.",
					"error":      "Too Many Requests",
					"statusCode": http.StatusTooManyRequests,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the remote host, falling back to the raw RemoteAddr
// when it has no port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
