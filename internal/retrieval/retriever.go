package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docqa/internal/contextutil"
	"docqa/internal/embedding"
	"docqa/internal/service"
	"docqa/internal/storage"
	"docqa/internal/vectorstore"
)

const (
	defaultK = 10
	maxK     = 20
)

// Retriever performs access-scoped similarity retrieval: it embeds the
// question, resolves the caller's organization memberships, and searches the
// vector store restricted to chunks the caller is authorized to see.
type Retriever struct {
	embedder    embedding.Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	threshold   float32
	k           int
	chunks      storage.ChunkStore
	memberships storage.MembershipStore
	logger      *slog.Logger
}

// NewRetriever creates a new Retriever. threshold is the similarity floor
// below which candidates are discarded (zero disables the floor); k is the
// result count used when a request does not ask for one (zero uses
// defaultK), clamped to maxK.
func NewRetriever(
	embedder embedding.Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	threshold float32,
	k int,
	chunks storage.ChunkStore,
	memberships storage.MembershipStore,
) *Retriever {
	if k <= 0 {
		k = defaultK
	}
	if k > maxK {
		k = maxK
	}
	return &Retriever{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		threshold:   threshold,
		k:           k,
		chunks:      chunks,
		memberships: memberships,
		logger:      slog.Default(),
	}
}

// Retrieve returns the top-k chunks most similar to the question that the
// caller may see. An explicit orgID the caller does not belong to fails with
// service.ErrAccessDenied before any embedding work is done. An empty result
// is a valid "no knowledge" outcome, not an error.
func (r *Retriever) Retrieve(ctx context.Context, question, callerID, orgID string, scope Scope, k int) ([]Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if !scope.Valid() {
		return nil, &service.ValidationError{Field: "search_scope", Message: fmt.Sprintf("unknown scope %q", scope)}
	}
	if scope == ScopeOrganization && orgID == "" {
		return nil, &service.ValidationError{Field: "organization_id", Message: "organization scope requires an organization"}
	}
	if k <= 0 {
		k = r.k
	}
	if k > maxK {
		k = maxK
	}

	// Membership is checked before any retrieval work, including the
	// question embedding.
	if orgID != "" {
		member, err := r.memberships.HasMembership(ctx, callerID, orgID)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if !member {
			logger.WarnContext(ctx, "organization access denied", "caller_id", callerID, "organization_id", orgID)
			return nil, fmt.Errorf("%w: not a member of organization %s", service.ErrAccessDenied, orgID)
		}
	}

	orgIDs, err := r.memberships.ListOrganizations(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	embeddings, err := r.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned for question", service.ErrEmbedding)
	}
	queryVector := embeddings[0]

	filter := vectorstore.AccessFilter{
		OwnerID: callerID,
		OrgIDs:  orgIDs,
	}
	if scope == ScopeOrganization {
		filter.OrgOnly = orgID
	}

	searchResults, err := r.vectorStore.Search(ctx, r.collection, queryVector, k, r.threshold, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}

	results := make([]Result, 0, len(searchResults))
	for _, sr := range searchResults {
		chunk, err := r.chunks.GetByID(ctx, sr.PointID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				logger.WarnContext(ctx, "chunk missing from database, skipping", "chunk_id", sr.PointID)
				continue
			}
			return nil, fmt.Errorf("failed to fetch chunk: %w", err)
		}

		results = append(results, Result{
			ChunkID:        chunk.ID,
			DocumentID:     chunk.DocumentID,
			ChunkIndex:     chunk.ChunkIndex,
			Text:           chunk.Text,
			Score:          sr.Score,
			OwnerID:        chunk.OwnerID,
			OrganizationID: chunk.OrganizationID,
			SourceType:     deriveSourceType(chunk.OrganizationID),
		})
	}

	logger.InfoContext(ctx, "retrieval completed",
		"caller_id", callerID,
		"scope", string(scope),
		"k", k,
		"results", len(results),
	)
	return results, nil
}
