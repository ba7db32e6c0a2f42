package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"docqa/internal/service"
)

// Embedder turns text into fixed-dimension vectors. Ingest-time per-chunk
// calls and query-time question calls must go through the same Embedder so
// vectors are comparable.
type Embedder interface {
	// EmbedTexts generates embeddings for the given texts, one vector per input.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Client is a client for an OpenAI-compatible embeddings API.
type Client struct {
	BaseURL   string
	APIKey    string
	Model     string
	Dimension int // Expected vector size for validation
	client    *http.Client
}

// NewClient creates a new embeddings client. dimension is the expected vector
// size; every returned vector is validated against it.
func NewClient(baseURL, apiKey, model string, dimension int) *Client {
	return &Client{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		Model:     model,
		Dimension: dimension,
		client:    http.DefaultClient,
	}
}

// embeddingsRequest represents the request payload for the embeddings API.
type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingData holds a single embedding. The vector is kept raw because
// some backends return a nested array per input instead of a flat vector.
type embeddingData struct {
	Embedding json.RawMessage `json:"embedding"`
}

// embeddingsResponse represents the response from the embeddings API.
type embeddingsResponse struct {
	Data []embeddingData `json:"data"`
}

// EmbedTexts generates embeddings for the given texts.
// All failures are typed as service.ErrEmbedding; callers decide whether a
// failure is fatal (query time) or skippable (per-chunk at ingest).
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: empty input array", service.ErrEmbedding)
	}

	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)

	payload := embeddingsRequest{
		Model: c.Model,
		Input: texts,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", service.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", service.ErrEmbedding, err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request: %v", service.ErrEmbedding, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: bad status %d: %s", service.ErrEmbedding, resp.StatusCode, string(raw))
	}

	var embeddingsResp embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingsResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", service.ErrEmbedding, err)
	}

	if len(embeddingsResp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", service.ErrEmbedding, len(texts), len(embeddingsResp.Data))
	}

	result := make([][]float32, len(embeddingsResp.Data))
	for i, data := range embeddingsResp.Data {
		vec, err := decodeVector(data.Embedding)
		if err != nil {
			return nil, fmt.Errorf("%w: embedding %d: %v", service.ErrEmbedding, i, err)
		}
		if len(vec) != c.Dimension {
			return nil, fmt.Errorf("%w: embedding %d has size %d, expected %d", service.ErrEmbedding, i, len(vec), c.Dimension)
		}
		result[i] = vec
	}

	return result, nil
}

// decodeVector unwraps an embedding vector from its raw JSON form. A flat
// array of floats is the common shape; some backends nest a single vector
// inside another array, which must be unwrapped.
func decodeVector(raw json.RawMessage) ([]float32, error) {
	var flat []float64
	if err := json.Unmarshal(raw, &flat); err == nil {
		return toFloat32(flat), nil
	}

	var nested [][]float64
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return nil, fmt.Errorf("nested embedding array is empty")
		}
		return toFloat32(nested[0]), nil
	}

	return nil, fmt.Errorf("unexpected embedding shape")
}

func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}
