package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"docqa/internal/chunker"
	"docqa/internal/contextutil"
	"docqa/internal/embedding"
	"docqa/internal/service"
	"docqa/internal/storage"
	"docqa/internal/vectorstore"
)

const (
	// embedBatchSize bounds how many chunk-embedding calls run concurrently.
	embedBatchSize = 5
	// embedBatchDelay is the pause between batches, to respect upstream
	// rate limits.
	embedBatchDelay = 200 * time.Millisecond
)

// SaveRequest describes a document upload.
type SaveRequest struct {
	OwnerID        string
	OrganizationID string
	Filename       string
	Content        string
	Visibility     string // Defaults to "private" when empty
}

// SaveResult reports the outcome of a document save.
type SaveResult struct {
	DocumentID      string
	Filename        string // Final filename after conflict renaming
	TotalChunks     int
	ProcessedChunks int
	ProcessingRate  float64 // processed/total * 100
}

// Pipeline orchestrates saving a document: validation, chunking, batched
// embedding, and storage in both SQLite and the vector store. Documents and
// chunks are written exactly once and never mutated.
type Pipeline struct {
	docs        storage.DocumentStore
	chunks      storage.ChunkStore
	memberships storage.MembershipStore
	embedder    embedding.Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	chunker     *chunker.Chunker
	batchDelay  time.Duration
	logger      *slog.Logger
}

// NewPipeline creates a new ingest pipeline.
func NewPipeline(
	docs storage.DocumentStore,
	chunks storage.ChunkStore,
	memberships storage.MembershipStore,
	embedder embedding.Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
) *Pipeline {
	return &Pipeline{
		docs:        docs,
		chunks:      chunks,
		memberships: memberships,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		chunker:     chunker.New(),
		batchDelay:  embedBatchDelay,
		logger:      slog.Default(),
	}
}

// SaveDocument validates, chunks, embeds, and stores a document.
// Per-chunk embedding failures are logged and skipped; the save succeeds as
// long as at least one chunk embeds (or the document produced no chunks).
func (p *Pipeline) SaveDocument(ctx context.Context, req SaveRequest) (SaveResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Visibility == "" {
		req.Visibility = storage.VisibilityPrivate
	}
	if strings.TrimSpace(req.Filename) == "" {
		return SaveResult{}, &service.ValidationError{Field: "filename", Message: "filename is required"}
	}

	doc := &storage.DocumentRecord{
		ID:             uuid.New().String(),
		OwnerID:        req.OwnerID,
		OrganizationID: req.OrganizationID,
		Filename:       req.Filename,
		Content:        req.Content,
		Visibility:     req.Visibility,
		CreatedAt:      time.Now().UTC(),
	}
	if err := doc.Validate(); err != nil {
		return SaveResult{}, err
	}

	// Saving into an organization requires membership in it.
	if doc.OrganizationID != "" {
		member, err := p.memberships.HasMembership(ctx, doc.OwnerID, doc.OrganizationID)
		if err != nil {
			return SaveResult{}, fmt.Errorf("failed to check membership: %w", err)
		}
		if !member {
			return SaveResult{}, fmt.Errorf("%w: not a member of organization %s", service.ErrAccessDenied, doc.OrganizationID)
		}
	}

	filename, err := p.uniqueFilename(ctx, doc.OwnerID, doc.OrganizationID, doc.Filename)
	if err != nil {
		return SaveResult{}, err
	}
	doc.Filename = filename

	chunks := p.chunker.Chunk(doc.Content, doc.Filename)

	if len(chunks) == 0 {
		if err := p.docs.Insert(ctx, doc); err != nil {
			return SaveResult{}, err
		}
		logger.WarnContext(ctx, "no chunks generated", "document_id", doc.ID, "filename", doc.Filename)
		return SaveResult{DocumentID: doc.ID, Filename: doc.Filename}, nil
	}

	vectors := p.embedChunks(ctx, logger, chunks)

	// The document row is written only after at least one chunk embeds, so
	// a fully failed embedding pass leaves no orphan document behind to
	// trigger rename-on-conflict when the upload is retried.
	embedded := 0
	for _, v := range vectors {
		if v != nil {
			embedded++
		}
	}
	if embedded == 0 {
		return SaveResult{}, fmt.Errorf("%w: no chunks could be embedded", service.ErrEmbedding)
	}

	if err := p.docs.Insert(ctx, doc); err != nil {
		return SaveResult{}, err
	}

	var points []vectorstore.Point
	processed := 0
	for i, chunk := range chunks {
		if vectors[i] == nil {
			continue // Embedding failed for this chunk; already logged.
		}

		// Ownership fields are denormalized from the parent document so
		// access filtering never needs a join at read time.
		record := &storage.ChunkRecord{
			ID:             uuid.New().String(),
			DocumentID:     doc.ID,
			ChunkIndex:     chunk.Index,
			OwnerID:        doc.OwnerID,
			OrganizationID: doc.OrganizationID,
			Text:           chunk.Text,
		}
		if err := p.chunks.Insert(ctx, record); err != nil {
			return SaveResult{}, fmt.Errorf("failed to insert chunk: %w", err)
		}

		meta := map[string]any{
			"document_id": doc.ID,
			"chunk_index": chunk.Index,
			"owner_id":    doc.OwnerID,
			"filename":    doc.Filename,
			"visibility":  doc.Visibility,
		}
		if doc.OrganizationID != "" {
			meta["organization_id"] = doc.OrganizationID
		}
		points = append(points, vectorstore.Point{
			ID:   record.ID,
			Vec:  vectors[i],
			Meta: meta,
		})
		processed++
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return SaveResult{}, fmt.Errorf("failed to upsert vectors: %w", err)
	}

	result := SaveResult{
		DocumentID:      doc.ID,
		Filename:        doc.Filename,
		TotalChunks:     len(chunks),
		ProcessedChunks: processed,
		ProcessingRate:  float64(processed) / float64(len(chunks)) * 100,
	}

	logger.InfoContext(ctx, "document saved",
		"document_id", doc.ID,
		"filename", doc.Filename,
		"visibility", doc.Visibility,
		"total_chunks", result.TotalChunks,
		"processed_chunks", result.ProcessedChunks,
	)
	return result, nil
}

// embedChunks embeds chunk texts in bounded concurrent batches with a short
// delay between batches. The returned slice is indexed like chunks; a nil
// vector marks a chunk whose embedding failed and was skipped.
func (p *Pipeline) embedChunks(ctx context.Context, logger *slog.Logger, chunks []chunker.Chunk) [][]float32 {
	vectors := make([][]float32, len(chunks))

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				embedded, err := p.embedder.EmbedTexts(ctx, []string{chunks[i].Text})
				if err != nil {
					logger.WarnContext(ctx, "failed to embed chunk, skipping",
						"chunk_index", chunks[i].Index, "error", err)
					return
				}
				if len(embedded) == 1 {
					vectors[i] = embedded[0]
				}
			}(i)
		}
		wg.Wait()

		if end < len(chunks) && p.batchDelay > 0 {
			time.Sleep(p.batchDelay)
		}
	}

	return vectors
}

// uniqueFilename resolves filename conflicts within the (owner, organization)
// scope by appending " (n)" before the extension. This is a read-then-write
// probe; two concurrent uploads with the same name can still race, which is
// tolerated.
func (p *Pipeline) uniqueFilename(ctx context.Context, ownerID, orgID, filename string) (string, error) {
	exists, err := p.docs.Exists(ctx, ownerID, orgID, filename)
	if err != nil {
		return "", fmt.Errorf("failed to check filename: %w", err)
	}
	if !exists {
		return filename, nil
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	for i := 1; i <= 100; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		exists, err := p.docs.Exists(ctx, ownerID, orgID, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check filename: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find a unique filename for %q", filename)
}
