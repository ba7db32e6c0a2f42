package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"docqa/internal/service"
)

// Identity is a verified caller.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Verifier validates a bearer token and resolves the caller's identity.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (Identity, error)
}

// HTTPVerifier verifies tokens against an external auth service.
type HTTPVerifier struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPVerifier creates a verifier calling the auth service at baseURL.
func NewHTTPVerifier(baseURL string) *HTTPVerifier {
	return &HTTPVerifier{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// VerifyToken calls the auth service's verify endpoint. Any failure maps to
// service.ErrAuth so handlers produce a 401 rather than leaking backend
// details.
func (v *HTTPVerifier) VerifyToken(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, fmt.Errorf("%w: missing token", service.ErrAuth)
	}

	body, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", service.ErrAuth, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/v1/verify", bytes.NewReader(body))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", service.ErrAuth, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: auth service unreachable: %v", service.ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("%w: auth service returned status %d", service.ErrAuth, resp.StatusCode)
	}

	var vr verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return Identity{}, fmt.Errorf("%w: decoding verify response: %v", service.ErrAuth, err)
	}
	if !vr.Valid || vr.UserID == "" {
		return Identity{}, fmt.Errorf("%w: token rejected", service.ErrAuth)
	}

	return Identity{UserID: vr.UserID, Email: vr.Email}, nil
}
