package ratelimit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"docqa/internal/auth"
	"docqa/internal/contextutil"
)

// Middleware enforces the limiter keyed by the authenticated user ID. It
// must run after the auth middleware; unauthenticated requests fall back to
// the remote address as the key.
func Middleware(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if identity, ok := auth.IdentityFromContext(r.Context()); ok {
				key = identity.UserID
			}

			decision := limiter.Allow(key)
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", decision.Remaining))
			if !decision.Allowed {
				logger := contextutil.LoggerFromContext(r.Context())
				logger.WarnContext(r.Context(), "rate limit exceeded", "key", key)

				retryAfter := int(decision.RetryAfter / time.Second)
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "rate limit exceeded, try again later",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
