package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"docqa/internal/contextutil"
)

// Middleware extracts the bearer token, verifies it, and stores the
// resulting Identity in the request context. Requests without a valid token
// are rejected with 401 before reaching any handler.
func Middleware(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := contextutil.LoggerFromContext(ctx)

			token := bearerToken(r)
			if token == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			identity, err := verifier.VerifyToken(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "token verification failed", "error", err)
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			ctx = WithIdentity(ctx, identity)
			ctx = contextutil.WithLogger(ctx, logger.With("user_id", identity.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
