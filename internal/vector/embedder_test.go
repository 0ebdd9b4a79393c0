package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "text-embedding-ada-002" || req.Input != "자료구조" {
			t.Errorf("unexpected request %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}}},
		})
	}))
	defer srv.Close()

	emb, err := NewOpenAIEmbedder("key", "text-embedding-ada-002")
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder: %v", err)
	}
	emb.WithBaseURL(srv.URL)

	got, err := emb.Embed(context.Background(), "자료구조")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 dims, got %d", len(got))
	}
}

func TestEmbedAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "bad key", "type": "invalid_request_error"},
		})
	}))
	defer srv.Close()

	emb, err := NewOpenAIEmbedder("key", "m")
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder: %v", err)
	}
	emb.WithBaseURL(srv.URL)

	if _, err := emb.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error from API failure")
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer empty.Close()
	emb.WithBaseURL(empty.URL)
	if _, err := emb.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error for missing data")
	}
}
