package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"docqa/internal/answer"
	"docqa/internal/assemble"
	"docqa/internal/auth"
	"docqa/internal/config"
	"docqa/internal/embedding"
	"docqa/internal/http"
	"docqa/internal/ingest"
	"docqa/internal/llm"
	"docqa/internal/qa"
	"docqa/internal/ratelimit"
	"docqa/internal/retrieval"
	"docqa/internal/storage"
	"docqa/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers questions about uploaded documents. Documents are chunked,
// embedded, and stored per user; questions retrieve access-scoped chunks and
// generate answers through a tiered fallback chain.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: DocQA API
//   description: |
//     Multi-tenant document question answering. Upload documents privately or
//     into an organization, then ask questions answered from your accessible
//     documents only.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)
	membershipRepo := storage.NewMembershipRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.VectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.VectorSize)

	// Validate embedding client vector size (fail-fast)
	embedClient := embedding.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.VectorSize)
	testEmbeddings, err := embedClient.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.VectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.VectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.VectorSize)

	embedder := embedding.NewCachedEmbedder(embedClient, cfg.EmbedCacheSize, cfg.EmbedCacheTTL)

	// Create ingest pipeline
	ingestPipeline := ingest.NewPipeline(
		docRepo,
		chunkRepo,
		membershipRepo,
		embedder,
		vectorStore,
		cfg.QdrantCollection,
	)

	// Create retrieval side
	retriever := retrieval.NewRetriever(
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		cfg.SimilarityThreshold,
		cfg.RetrievalK,
		chunkRepo,
		membershipRepo,
	)
	verifier := retrieval.NewVerifier(membershipRepo)
	assembler := assemble.New()

	// Generation tiers, attempted in order
	primaryLLM := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	tiers := []answer.Strategy{
		answer.NewPrimaryLLM(primaryLLM),
		answer.NewPatternExtraction(),
	}
	if cfg.FallbackLLMBaseURL != "" {
		fallbackLLM := llm.NewClient(cfg.FallbackLLMBaseURL, cfg.LLMAPIKey, cfg.FallbackLLMModel)
		tiers = append(tiers, answer.NewSecondaryLLM(fallbackLLM, "fallback_llm"))
	}
	tiers = append(tiers, answer.NewSecondaryLLM(primaryLLM, "secondary_llm"), answer.NewSentenceScoring())
	generator := answer.NewGenerator(tiers...)

	qaService := qa.NewService(retriever, verifier, assembler, generator)
	slog.Info("Question pipeline initialized")

	// Create router with dependencies
	deps := &http.Deps{
		QAService:      qaService,
		IngestPipeline: ingestPipeline,
		AuthVerifier:   auth.NewHTTPVerifier(cfg.AuthBaseURL),
		Limiter:        ratelimit.NewFixedWindow(cfg.RateLimit, cfg.RateWindow),
		VectorStore:    vectorStore,
		CollectionName: cfg.QdrantCollection,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModel)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
