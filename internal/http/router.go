package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docqa/internal/auth"
	"docqa/internal/handlers"
	"docqa/internal/ratelimit"
	"docqa/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	QAService      handlers.Asker
	IngestPipeline handlers.Saver
	AuthVerifier   auth.Verifier
	Limiter        ratelimit.Limiter
	VectorStore    vectorstore.VectorStore
	CollectionName string
}

// NewRouter creates a new HTTP router with the provided dependencies.
// Everything under /api/v1 requires a verified bearer token and is rate
// limited per user; /healthz is open.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.QAService)
	uploadHandler := handlers.NewUploadHandler(deps.IngestPipeline)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.CollectionName)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(deps.AuthVerifier))
		r.Use(ratelimit.Middleware(deps.Limiter))

		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodPost, "/documents", uploadHandler)
	})

	r.Method(http.MethodGet, "/healthz", healthHandler)

	return r
}
