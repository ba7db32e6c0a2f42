package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks docqa/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"fmt"
)

// DocumentStore defines the interface for document storage operations.
// Documents are append-only: there is no update or delete path.
type DocumentStore interface {
	// Insert inserts a single document. The document.ID must be set (UUID)
	// and the record must pass Validate before calling this method.
	Insert(ctx context.Context, doc *DocumentRecord) error
	// GetByID gets a document by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*DocumentRecord, error)
	// Exists checks whether a document with the given filename already
	// exists for the (owner, organization) pair. orgID may be empty.
	Exists(ctx context.Context, ownerID, orgID, filename string) (bool, error)
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Insert inserts a single document into the database.
// The visibility invariant is re-checked here so an invalid record can never
// reach the table regardless of the caller.
func (r *DocumentRepo) Insert(ctx context.Context, doc *DocumentRecord) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO documents (id, owner_id, organization_id, filename, content, visibility, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		doc.ID, doc.OwnerID, nullable(doc.OrganizationID), doc.Filename, doc.Content, doc.Visibility, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetByID gets a document by its ID. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*DocumentRecord, error) {
	var doc DocumentRecord
	var orgID sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT id, owner_id, organization_id, filename, content, visibility, created_at FROM documents WHERE id = ?",
		id,
	).Scan(&doc.ID, &doc.OwnerID, &orgID, &doc.Filename, &doc.Content, &doc.Visibility, &doc.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	doc.OrganizationID = orgID.String
	return &doc, nil
}

// Exists checks whether a document with the given filename already exists
// for the (owner, organization) pair.
func (r *DocumentRepo) Exists(ctx context.Context, ownerID, orgID, filename string) (bool, error) {
	var query string
	var args []any
	if orgID == "" {
		query = "SELECT COUNT(1) FROM documents WHERE owner_id = ? AND organization_id IS NULL AND filename = ?"
		args = []any{ownerID, filename}
	} else {
		query = "SELECT COUNT(1) FROM documents WHERE owner_id = ? AND organization_id = ? AND filename = ?"
		args = []any{ownerID, orgID, filename}
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check document existence: %w", err)
	}
	return count > 0, nil
}
