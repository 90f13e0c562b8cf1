package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/clusterops/internal/domain"
)

type mockEmbedder struct {
	err      error
	short    bool
	chunks   [][]string
	failFrom int
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) (domain.Embeddings, error) {
	m.chunks = append(m.chunks, texts)
	if m.err != nil && len(m.chunks) > m.failFrom {
		return domain.Embeddings{}, m.err
	}
	n := len(texts)
	if m.short {
		n--
	}
	out := domain.Embeddings{Vectors: make([][]float32, n)}
	for i := range out.Vectors {
		out.Vectors[i] = []float32{float32(len(texts[i]))}
	}
	out.Usage = domain.Usage{PromptTokens: n, TotalTokens: 2 * n}
	return out, nil
}

func TestInstrumentedEmbedder_Chunks(t *testing.T) {
	inner := &mockEmbedder{}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop()).WithMaxBatch(2)

	res, err := p.Embed(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(inner.chunks))
	}
	if len(res.Vectors) != 5 || res.Vectors[4][0] != 5 {
		t.Errorf("vectors = %v", res.Vectors)
	}
	if res.Usage.PromptTokens != 5 || res.Usage.TotalTokens != 10 {
		t.Errorf("usage = %+v", res.Usage)
	}
}

func TestInstrumentedEmbedder_Empty(t *testing.T) {
	inner := &mockEmbedder{}
	res, err := NewInstrumentedEmbedder(inner, "test", "m", nil).Embed(context.Background(), nil)
	if err != nil || res.Vectors != nil || len(inner.chunks) != 0 {
		t.Errorf("res=%+v err=%v calls=%d", res, err, len(inner.chunks))
	}
}

func TestInstrumentedEmbedder_ErrorStopsAtChunk(t *testing.T) {
	innerErr := errors.New("provider down")
	inner := &mockEmbedder{err: innerErr, failFrom: 1}
	p := NewInstrumentedEmbedder(inner, "test", "m", zap.NewNop()).WithMaxBatch(1)

	_, err := p.Embed(context.Background(), []string{"a", "b", "c"})
	if !errors.Is(err, innerErr) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
	if len(inner.chunks) != 2 {
		t.Errorf("expected to stop after failing chunk, got %d calls", len(inner.chunks))
	}
}

func TestInstrumentedEmbedder_ShortAnswer(t *testing.T) {
	p := NewInstrumentedEmbedder(&mockEmbedder{short: true}, "test", "m", nil)
	if _, err := p.Embed(context.Background(), []string{"a", "b"}); !errors.Is(err, domain.ErrEmbeddingProvider) {
		t.Fatalf("expected ErrEmbeddingProvider, got %v", err)
	}
}
