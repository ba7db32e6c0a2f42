package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docqa/internal/auth"
	"docqa/internal/ingest"
	"docqa/internal/qa"
	"docqa/internal/ratelimit"
	"docqa/internal/vectorstore"
)

type stubAsker struct{}

func (stubAsker) Ask(_ context.Context, _ string, _ qa.AskRequest) (*qa.AskResponse, error) {
	return &qa.AskResponse{
		Answer:          "stub answer",
		Sources:         []qa.Source{},
		SourceBreakdown: map[string]int{},
	}, nil
}

type stubSaver struct{}

func (stubSaver) SaveDocument(_ context.Context, _ ingest.SaveRequest) (ingest.SaveResult, error) {
	return ingest.SaveResult{DocumentID: "doc-1", Filename: "a.txt"}, nil
}

type stubAuthVerifier struct{}

func (stubAuthVerifier) VerifyToken(_ context.Context, token string) (auth.Identity, error) {
	return auth.Identity{UserID: "user-1"}, nil
}

type stubStore struct{}

func (stubStore) Upsert(context.Context, string, []vectorstore.Point) error { return nil }
func (stubStore) Search(context.Context, string, []float32, int, float32, vectorstore.AccessFilter) ([]vectorstore.SearchResult, error) {
	return nil, nil
}
func (stubStore) CollectionExists(context.Context, string) (bool, error) { return true, nil }

func newTestRouter() http.Handler {
	return NewRouter(&Deps{
		QAService:      stubAsker{},
		IngestPipeline: stubSaver{},
		AuthVerifier:   stubAuthVerifier{},
		Limiter:        ratelimit.NewFixedWindow(100, time.Minute),
		VectorStore:    stubStore{},
		CollectionName: "documents",
	})
}

func TestRouter_HealthzOpen(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 without credentials", rec.Code)
	}
}

func TestRouter_APIRequiresToken(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"question":"q"}`))
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without a bearer token", rec.Code)
	}
}

func TestRouter_AskWithToken(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"question":"q"}`))
	req.Header.Set("Authorization", "Bearer token-abc")
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-RateLimit-Remaining") == "" {
		t.Error("rate limit header missing on API route")
	}
}

func TestRouter_UploadWithToken(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(`{"filename":"a.txt","content":"text"}`))
	req.Header.Set("Authorization", "Bearer token-abc")
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
