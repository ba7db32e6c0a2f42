package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"docqa/internal/service"
)

func TestEmbedTexts_FlatVectors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}

		resp := map[string]any{"data": []map[string]any{}}
		data := resp["data"].([]map[string]any)
		for range req.Input {
			data = append(data, map[string]any{"embedding": []float64{0.1, 0.2, 0.3}})
		}
		resp["data"] = data
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model", 3)

	vectors, err := client.EmbedTexts(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("EmbedTexts() = %d vectors, want 2", len(vectors))
	}
	for i, vec := range vectors {
		if len(vec) != 3 {
			t.Errorf("vector %d has size %d, want 3", i, len(vec))
		}
	}
}

func TestEmbedTexts_NestedVectors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"embedding":[[0.5,0.6]]}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model", 2)

	vectors, err := client.EmbedTexts(context.Background(), []string{"one"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(vectors) != 1 || len(vectors[0]) != 2 {
		t.Fatalf("EmbedTexts() = %v, want one vector of size 2", vectors)
	}
	if vectors[0][0] != 0.5 {
		t.Errorf("vector[0][0] = %v, want 0.5", vectors[0][0])
	}
}

func TestEmbedTexts_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		texts   []string
	}{
		{
			name: "server error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			texts: []string{"a"},
		},
		{
			name: "count mismatch",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1]}]}`))
			},
			texts: []string{"a", "b"},
		},
		{
			name: "dimension mismatch",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3,0.4]}]}`))
			},
			texts: []string{"a"},
		},
		{
			name: "malformed embedding shape",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"data":[{"embedding":"not-a-vector"}]}`))
			},
			texts: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL, "key", "model", 3)
			_, err := client.EmbedTexts(context.Background(), tt.texts)
			if err == nil {
				t.Fatal("EmbedTexts() error = nil, want error")
			}
			if !errors.Is(err, service.ErrEmbedding) {
				t.Errorf("error %v is not service.ErrEmbedding", err)
			}
		})
	}
}

func TestEmbedTexts_EmptyInput(t *testing.T) {
	client := NewClient("http://unused", "key", "model", 3)
	_, err := client.EmbedTexts(context.Background(), nil)
	if !errors.Is(err, service.ErrEmbedding) {
		t.Errorf("EmbedTexts(nil) error = %v, want service.ErrEmbedding", err)
	}
}
