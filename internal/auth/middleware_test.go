package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeVerifier struct {
	identity Identity
	err      error
	gotToken string
}

func (f *fakeVerifier) VerifyToken(_ context.Context, token string) (Identity, error) {
	f.gotToken = token
	return f.identity, f.err
}

func TestMiddleware_ValidToken(t *testing.T) {
	verifier := &fakeVerifier{identity: Identity{UserID: "user-1", Email: "u@example.com"}}

	var gotIdentity Identity
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity, gotOK = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil)
	req.Header.Set("Authorization", "Bearer token-xyz")
	rec := httptest.NewRecorder()

	Middleware(verifier)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if verifier.gotToken != "token-xyz" {
		t.Errorf("verifier received token %q", verifier.gotToken)
	}
	if !gotOK || gotIdentity.UserID != "user-1" {
		t.Errorf("identity in context = %+v, ok = %v", gotIdentity, gotOK)
	}
}

func TestMiddleware_MissingOrBadHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "bare token", header: "token-xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{}
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler reached without credentials")
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			Middleware(verifier)(next).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if verifier.gotToken != "" {
				t.Errorf("verifier called with %q, want no call", verifier.gotToken)
			}
		})
	}
}

func TestMiddleware_VerificationFailure(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("token rejected")}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with invalid token")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()

	Middleware(verifier)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestIdentityFromContext_Absent(t *testing.T) {
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Error("IdentityFromContext() ok = true on empty context")
	}
}
