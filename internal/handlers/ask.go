package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"docqa/internal/auth"
	"docqa/internal/contextutil"
	"docqa/internal/qa"
	"docqa/internal/retrieval"
)

// Asker answers questions against the caller's accessible documents.
type Asker interface {
	Ask(ctx context.Context, callerID string, req qa.AskRequest) (*qa.AskResponse, error)
}

// AskHandler handles HTTP requests for document questions.
type AskHandler struct {
	qaService Asker
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(qaService Asker) *AskHandler {
	return &AskHandler{qaService: qaService}
}

// AskRequest represents the HTTP request payload for questions.
// This mirrors qa.AskRequest but is defined here for HTTP layer separation.
//
// swagger:model AskRequest
type AskRequest struct {
	Question       string `json:"question"`
	OrganizationID string `json:"organization_id,omitempty"`
	SearchScope    string `json:"search_scope,omitempty"`
}

// AskResponse represents the HTTP response payload for questions.
//
// swagger:model AskResponse
type AskResponse struct {
	// The generated answer
	Answer string `json:"answer"`

	// Supporting chunks the answer was generated from
	Sources []SourceResponse `json:"sources"`

	// Number of chunks retrieved before assembly
	FoundChunks int `json:"found_chunks"`

	// Heuristic quality score of the assembled context, in [0, 1]
	ContextQualityScore float64 `json:"context_quality_score"`

	// Retrieved chunk counts by source type
	SourceBreakdown map[string]int `json:"source_breakdown"`
}

// SourceResponse represents one cited source in the HTTP response.
//
// swagger:model SourceResponse
type SourceResponse struct {
	// Truncated chunk text
	Text string `json:"text"`

	// Similarity score from vector search
	Similarity float32 `json:"similarity"`

	// "personal" or "organization"
	SourceType string `json:"source_type"`

	// Owning organization, empty for personal chunks
	OrganizationID string `json:"organization_id,omitempty"`
}

// ServeHTTP handles HTTP requests for document questions.
//
// swagger:route POST /api/v1/ask askQuestion
//
// # Ask a question about your documents
//
// Retrieves access-scoped chunks relevant to the question and generates an
// answer. A request with no matching documents still succeeds with an
// explanatory answer and zero sources.
//
// responses:
//
//	'200':
//	  description: Answer with sources (possibly the no-documents answer)
//	'400':
//	  description: Invalid question or scope
//	'401':
//	  description: Missing or invalid token
//	'403':
//	  description: Caller is not a member of the requested organization
//	'502':
//	  description: Embedding or LLM backend unavailable
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Question == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	resp, err := h.qaService.Ask(ctx, identity.UserID, qa.AskRequest{
		Question:       req.Question,
		OrganizationID: req.OrganizationID,
		SearchScope:    retrieval.Scope(req.SearchScope),
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to answer question")
		return
	}

	sources := make([]SourceResponse, len(resp.Sources))
	for i, s := range resp.Sources {
		sources[i] = SourceResponse{
			Text:           s.Text,
			Similarity:     s.Similarity,
			SourceType:     s.SourceType,
			OrganizationID: s.OrganizationID,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(AskResponse{
		Answer:              resp.Answer,
		Sources:             sources,
		FoundChunks:         resp.FoundChunks,
		ContextQualityScore: resp.ContextQualityScore,
		SourceBreakdown:     resp.SourceBreakdown,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
