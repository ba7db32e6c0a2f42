package storage

import (
	"time"

	"docqa/internal/service"
)

// Document visibility values.
const (
	VisibilityPrivate      = "private"
	VisibilityOrganization = "organization"
)

// Organization membership roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// DocumentRecord represents an uploaded document. Documents are immutable
// after creation; there is no update path.
type DocumentRecord struct {
	ID             string
	OwnerID        string
	OrganizationID string // Empty for personal documents (stored as NULL)
	Filename       string
	Content        string
	Visibility     string // "private" or "organization"
	CreatedAt      time.Time
}

// Validate enforces the visibility/organization invariant:
// organization visibility requires an organization, and personal documents
// must have none. Violations are rejected, never coerced.
func (d *DocumentRecord) Validate() error {
	switch d.Visibility {
	case VisibilityOrganization:
		if d.OrganizationID == "" {
			return &service.ValidationError{Field: "organization_id", Message: "organization visibility requires an organization"}
		}
	case VisibilityPrivate:
		if d.OrganizationID != "" {
			return &service.ValidationError{Field: "organization_id", Message: "private documents cannot have an organization"}
		}
	default:
		return &service.ValidationError{Field: "visibility", Message: "must be \"private\" or \"organization\""}
	}
	if d.OwnerID == "" {
		return &service.ValidationError{Field: "owner_id", Message: "owner is required"}
	}
	return nil
}

// ChunkRecord represents a chunk of a document, the unit of embedding and
// retrieval. OwnerID and OrganizationID are denormalized from the parent
// document at creation time and must always match it.
type ChunkRecord struct {
	ID             string
	DocumentID     string
	ChunkIndex     int // Ordinal position within the document (starts at 0)
	OwnerID        string
	OrganizationID string // Empty for personal chunks (stored as NULL)
	Text           string
}

// MembershipRecord relates a user to an organization with a role.
// A user has at most one role per organization.
type MembershipRecord struct {
	UserID         string
	OrganizationID string
	Role           string // "owner", "admin", or "member"
	CreatedAt      time.Time
}
