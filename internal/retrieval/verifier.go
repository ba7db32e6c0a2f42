package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"docqa/internal/contextutil"
	"docqa/internal/service"
	"docqa/internal/storage"
)

// Verifier is a defense-in-depth check that runs on every retrieval before
// results reach the context assembler. It recomputes the caller's
// memberships independently of the retriever's query filtering and asserts
// the ownership tag of every result. Any violation fails the request closed.
type Verifier struct {
	memberships storage.MembershipStore
	logger      *slog.Logger
}

// NewVerifier creates a new Verifier.
func NewVerifier(memberships storage.MembershipStore) *Verifier {
	return &Verifier{
		memberships: memberships,
		logger:      slog.Default(),
	}
}

// Violation describes a single result that failed verification.
type Violation struct {
	ChunkID        string
	SourceType     SourceType
	OwnerID        string
	OrganizationID string
	Reason         string
}

// Verify asserts that every personal result is owned by the caller and every
// organization result belongs to one of the caller's organizations. A
// failure returns service.ErrSecurityViolation and must not be recovered:
// it is logged distinctly from an ordinary empty result so authorization
// bugs cannot hide behind "no answer found" noise.
func (v *Verifier) Verify(ctx context.Context, results []Result, callerID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(results) == 0 {
		return nil
	}

	orgIDs, err := v.memberships.ListOrganizations(ctx, callerID)
	if err != nil {
		return fmt.Errorf("failed to resolve memberships for verification: %w", err)
	}
	memberOf := make(map[string]struct{}, len(orgIDs))
	for _, id := range orgIDs {
		memberOf[id] = struct{}{}
	}

	var violations []Violation
	for _, result := range results {
		switch result.SourceType {
		case SourcePersonal:
			if result.OwnerID != callerID {
				violations = append(violations, Violation{
					ChunkID:    result.ChunkID,
					SourceType: result.SourceType,
					OwnerID:    result.OwnerID,
					Reason:     "personal chunk not owned by caller",
				})
			}
		case SourceOrganization:
			if _, ok := memberOf[result.OrganizationID]; !ok {
				violations = append(violations, Violation{
					ChunkID:        result.ChunkID,
					SourceType:     result.SourceType,
					OrganizationID: result.OrganizationID,
					Reason:         "organization chunk outside caller memberships",
				})
			}
		default:
			violations = append(violations, Violation{
				ChunkID:    result.ChunkID,
				SourceType: result.SourceType,
				Reason:     "unknown source type",
			})
		}
	}

	if len(violations) == 0 {
		return nil
	}

	for _, violation := range violations {
		logger.ErrorContext(ctx, "security violation detected",
			"caller_id", callerID,
			"chunk_id", violation.ChunkID,
			"source_type", string(violation.SourceType),
			"owner_id", violation.OwnerID,
			"organization_id", violation.OrganizationID,
			"reason", violation.Reason,
		)
	}

	return fmt.Errorf("%w: %d of %d results failed ownership verification",
		service.ErrSecurityViolation, len(violations), len(results))
}
