package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_membership_store.go -package=mocks docqa/internal/storage MembershipStore

import (
	"context"
	"database/sql"
	"fmt"
)

// MembershipStore defines the interface for organization membership lookups.
// Memberships govern which organization-scoped chunks a user may retrieve.
type MembershipStore interface {
	// ListOrganizations returns the IDs of every organization the user
	// belongs to. Returns an empty slice for users with no memberships.
	ListOrganizations(ctx context.Context, userID string) ([]string, error)
	// HasMembership reports whether the user has any role in the organization.
	HasMembership(ctx context.Context, userID, orgID string) (bool, error)
	// Grant inserts a membership. A user has at most one role per
	// organization; duplicate grants fail.
	Grant(ctx context.Context, m *MembershipRecord) error
}

// MembershipRepo provides methods for membership operations.
// It implements the MembershipStore interface.
type MembershipRepo struct {
	db *sql.DB
}

// NewMembershipRepo creates a new MembershipRepo.
func NewMembershipRepo(db *sql.DB) *MembershipRepo {
	return &MembershipRepo{db: db}
}

// ListOrganizations returns the IDs of every organization the user belongs to.
func (r *MembershipRepo) ListOrganizations(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT organization_id FROM organization_memberships WHERE user_id = ? ORDER BY organization_id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var orgIDs []string
	for rows.Next() {
		var orgID string
		if err := rows.Scan(&orgID); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		orgIDs = append(orgIDs, orgID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orgIDs, nil
}

// HasMembership reports whether the user has any role in the organization.
func (r *MembershipRepo) HasMembership(ctx context.Context, userID, orgID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM organization_memberships WHERE user_id = ? AND organization_id = ?",
		userID, orgID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

// Grant inserts a membership row.
func (r *MembershipRepo) Grant(ctx context.Context, m *MembershipRecord) error {
	if m.Role != RoleOwner && m.Role != RoleAdmin && m.Role != RoleMember {
		return fmt.Errorf("invalid role: %q", m.Role)
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO organization_memberships (user_id, organization_id, role) VALUES (?, ?, ?)",
		m.UserID, m.OrganizationID, m.Role,
	)
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}
	return nil
}
