package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"docqa/internal/auth"
	"docqa/internal/contextutil"
	"docqa/internal/ingest"
)

// Saver ingests a document into storage and the vector index.
type Saver interface {
	SaveDocument(ctx context.Context, req ingest.SaveRequest) (ingest.SaveResult, error)
}

// UploadHandler handles HTTP requests for document uploads.
type UploadHandler struct {
	pipeline Saver
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(pipeline Saver) *UploadHandler {
	return &UploadHandler{pipeline: pipeline}
}

// UploadRequest represents the HTTP request payload for document uploads.
// Content is the already-extracted text of the document; file-format parsing
// happens upstream.
//
// swagger:model UploadRequest
type UploadRequest struct {
	Filename       string `json:"filename"`
	Content        string `json:"content"`
	OrganizationID string `json:"organization_id,omitempty"`
	Visibility     string `json:"visibility,omitempty"`
}

// UploadResponse represents the HTTP response payload for document uploads.
//
// swagger:model UploadResponse
type UploadResponse struct {
	DocumentID string `json:"document_id"`

	// Final filename, possibly renamed to resolve a conflict
	Filename string `json:"filename"`

	TotalChunks     int `json:"total_chunks"`
	ProcessedChunks int `json:"processed_chunks"`

	// Percentage of chunks embedded successfully
	ProcessingRate float64 `json:"processing_rate"`
}

// ServeHTTP handles HTTP requests for document uploads.
//
// swagger:route POST /api/v1/documents uploadDocument
//
// # Upload a document
//
// Chunks the document text, embeds each chunk, and stores it under the
// caller's ownership. Partial embedding failures are reported through the
// processing counters rather than failing the upload.
//
// responses:
//
//	'200':
//	  description: Document stored, with chunk processing counters
//	'400':
//	  description: Invalid filename, content, or visibility
//	'401':
//	  description: Missing or invalid token
//	'403':
//	  description: Caller is not a member of the target organization
//	'502':
//	  description: Embedding backend rejected every chunk
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.pipeline.SaveDocument(ctx, ingest.SaveRequest{
		OwnerID:        identity.UserID,
		OrganizationID: req.OrganizationID,
		Filename:       req.Filename,
		Content:        req.Content,
		Visibility:     req.Visibility,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to save document")
		return
	}

	logger.InfoContext(ctx, "document uploaded",
		"document_id", result.DocumentID,
		"total_chunks", result.TotalChunks,
		"processed_chunks", result.ProcessedChunks)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(UploadResponse{
		DocumentID:      result.DocumentID,
		Filename:        result.Filename,
		TotalChunks:     result.TotalChunks,
		ProcessedChunks: result.ProcessedChunks,
		ProcessingRate:  result.ProcessingRate,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
