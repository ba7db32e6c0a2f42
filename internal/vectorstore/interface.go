package vectorstore

import "context"

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// AccessFilter restricts a similarity search to chunks the caller may see.
// This query-level filtering is a performance optimization; the security
// verifier independently re-checks every returned row.
type AccessFilter struct {
	// OwnerID is the caller. Personal chunks are eligible only when owned
	// by the caller.
	OwnerID string
	// OrgIDs are the organizations the caller belongs to.
	OrgIDs []string
	// OrgOnly, when set, restricts results to that single organization.
	OrgOnly string
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search restricted by the access filter,
	// returning up to k results scoring at or above threshold.
	Search(ctx context.Context, collection string, query []float32, k int, threshold float32, filter AccessFilter) ([]SearchResult, error)

	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
