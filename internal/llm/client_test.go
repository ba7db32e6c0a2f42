package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatWithMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q, want /v1/chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want client default", req.Model)
		}
		if req.MaxTokens != 100 {
			t.Errorf("max_tokens = %d, want 100", req.MaxTokens)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v", req.Messages)
		}

		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{
				{Message: Message{Role: "assistant", Content: "hello back"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "test-model")
	got, err := c.ChatWithMessages(context.Background(), []Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
	}, ChatParams{MaxTokens: 100, Temperature: 0.1})
	if err != nil {
		t.Fatalf("ChatWithMessages() error = %v", err)
	}
	if got != "hello back" {
		t.Errorf("content = %q, want %q", got, "hello back")
	}
}

func TestChatWithMessages_ModelOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "override-model" {
			t.Errorf("model = %q, want override-model", req.Model)
		}
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{Message: Message{Content: "ok"}}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "default-model")
	if _, err := c.ChatWithMessages(context.Background(), []Message{{Role: "user", Content: "q"}}, ChatParams{Model: "override-model"}); err != nil {
		t.Fatalf("ChatWithMessages() error = %v", err)
	}
}

func TestChatWithMessages_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(chatResponse{})
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, "key", "model")
			if _, err := c.ChatWithMessages(context.Background(), []Message{{Role: "user", Content: "q"}}, ChatParams{}); err == nil {
				t.Error("ChatWithMessages() succeeded, want error")
			}
		})
	}
}
