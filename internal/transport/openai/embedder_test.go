package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/clusterops/internal/domain"
	"github.com/kailas-cloud/clusterops/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

type embeddingData struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// embeddingResponse mirrors the OpenAI-compatible embeddings response.
type embeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingData `json:"data"`
	Model  string          `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func fakeProvider(t *testing.T, status int, body any, gotInput *[]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if gotInput != nil {
			var req struct {
				Input []string `json:"input"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			*gotInput = req.Input
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEmbedder(url string) *Embedder {
	return NewEmbedder(&Config{
		APIKey:   "test-key",
		BaseURL:  url,
		Model:    "test-model",
		Provider: "test",
		Logger:   zap.NewNop(),
	})
}

func TestEmbedder_Embed_RestoresOrder(t *testing.T) {
	resp := embeddingResponse{Object: "list", Model: "test-model"}
	resp.Data = []embeddingData{
		{Object: "embedding", Embedding: []float32{0.3, 0.4}, Index: 1},
		{Object: "embedding", Embedding: []float32{0.1, 0.2}, Index: 0},
	}
	resp.Usage.PromptTokens = 20
	resp.Usage.TotalTokens = 20

	var input []string
	srv := fakeProvider(t, http.StatusOK, resp, &input)
	before := testutil.ToFloat64(metrics.EmbeddingTokensTotal.WithLabelValues("test", "test-model"))

	res, err := newTestEmbedder(srv.URL).Embed(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(input) != 2 || input[0] != "hello" {
		t.Errorf("input = %v", input)
	}
	if len(res.Vectors) != 2 || res.Vectors[0][0] != 0.1 || res.Vectors[1][0] != 0.3 {
		t.Errorf("vectors = %v", res.Vectors)
	}
	if res.Usage.TotalTokens != 20 || res.Usage.PromptTokens != 20 {
		t.Errorf("usage = %+v", res.Usage)
	}
	after := testutil.ToFloat64(metrics.EmbeddingTokensTotal.WithLabelValues("test", "test-model"))
	if after-before != 20 {
		t.Errorf("tokens metric delta = %v, want 20", after-before)
	}
}

func TestEmbedder_Embed_Empty(t *testing.T) {
	res, err := newTestEmbedder("http://unused").Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Vectors != nil {
		t.Errorf("expected nil vectors for empty input, got %v", res.Vectors)
	}
}

func TestEmbedder_Embed_CountMismatch(t *testing.T) {
	resp := embeddingResponse{Object: "list"}
	resp.Data = []embeddingData{{Object: "embedding", Embedding: []float32{0.1}, Index: 0}}
	srv := fakeProvider(t, http.StatusOK, resp, nil)

	_, err := newTestEmbedder(srv.URL).Embed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProvider) {
		t.Fatalf("expected ErrEmbeddingProvider, got %v", err)
	}
}

func TestEmbedder_Embed_DuplicateIndex(t *testing.T) {
	resp := embeddingResponse{Object: "list"}
	resp.Data = []embeddingData{
		{Object: "embedding", Embedding: []float32{0.1}, Index: 0},
		{Object: "embedding", Embedding: []float32{0.2}, Index: 0},
	}
	srv := fakeProvider(t, http.StatusOK, resp, nil)

	_, err := newTestEmbedder(srv.URL).Embed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProvider) {
		t.Fatalf("expected ErrEmbeddingProvider, got %v", err)
	}
}

func TestEmbedder_APIError(t *testing.T) {
	srv := fakeProvider(t, http.StatusTooManyRequests, map[string]any{
		"error": map[string]any{
			"message": "rate limit exceeded",
			"type":    "rate_limit_error",
		},
	}, nil)

	_, err := newTestEmbedder(srv.URL).Embed(context.Background(), []string{"hello"})
	if !errors.Is(err, domain.ErrEmbeddingProvider) {
		t.Fatalf("expected ErrEmbeddingProvider, got %v", err)
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail":"model not found"}`)); got != "model not found" {
		t.Errorf("got %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestNewEmbedder_Defaults(t *testing.T) {
	e := NewEmbedder(&Config{Model: "m"})
	if e.provider != "openai" || e.logger == nil || e.Model() != "m" {
		t.Errorf("defaults not applied: %+v", e)
	}
}
