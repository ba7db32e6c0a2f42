package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"docqa/internal/contextutil"
	"docqa/internal/service"
)

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// handleServiceError maps pipeline errors to HTTP status codes. Security
// violations are logged loudly and surfaced as an opaque 500 so callers
// cannot distinguish them from ordinary internal errors.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	switch {
	case errors.Is(err, service.ErrAuth):
		logger.WarnContext(ctx, "authentication error", "error", err)
		writeError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, service.ErrAccessDenied):
		logger.WarnContext(ctx, "access denied", "error", err)
		writeError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, service.ErrInvalidInput):
		logger.WarnContext(ctx, "invalid input", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEmbedding):
		logger.ErrorContext(ctx, "embedding backend error", "error", err)
		writeError(w, http.StatusBadGateway, "External service error")
	case errors.Is(err, service.ErrSecurityViolation):
		logger.ErrorContext(ctx, "security violation", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	case errors.Is(err, service.ErrNotFound):
		logger.WarnContext(ctx, "not found", "error", err)
		writeError(w, http.StatusNotFound, "Not found")
	default:
		logger.ErrorContext(ctx, "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}
