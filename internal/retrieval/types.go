package retrieval

// Scope is the breadth of documents eligible for retrieval.
type Scope string

const (
	// ScopeAll searches the caller's personal chunks plus chunks from every
	// organization the caller belongs to.
	ScopeAll Scope = "all"
	// ScopeOrganization restricts the search to a single organization.
	ScopeOrganization Scope = "organization"
)

// Valid reports whether the scope is a known value.
func (s Scope) Valid() bool {
	return s == ScopeAll || s == ScopeOrganization
}

// SourceType is the provenance tag on a retrieved chunk.
type SourceType string

const (
	SourcePersonal     SourceType = "personal"
	SourceOrganization SourceType = "organization"
)

// Result is one retrieved chunk with its similarity score and provenance.
// Results are ephemeral, produced per query and never persisted.
type Result struct {
	ChunkID        string
	DocumentID     string
	ChunkIndex     int
	Text           string
	Score          float32
	OwnerID        string
	OrganizationID string // Empty for personal chunks
	SourceType     SourceType
}

// deriveSourceType derives provenance from the chunk's organization tag.
func deriveSourceType(organizationID string) SourceType {
	if organizationID != "" {
		return SourceOrganization
	}
	return SourcePersonal
}
