package embcache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/clusterops/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &mockEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	s := newMapStore()
	ce := New(inner, s, "test-model", nil).WithTTL(time.Hour)
	ctx := context.Background()

	first, err := ce.Embed(ctx, []string{"text"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Usage.TotalTokens != 5 || len(first.Vectors[0]) != 3 {
		t.Fatalf("first = %+v", first)
	}
	if len(s.data) != 1 {
		t.Fatalf("expected 1 cached entry, got %d", len(s.data))
	}
	for _, ttl := range s.ttls {
		if ttl != time.Hour {
			t.Errorf("ttl = %v", ttl)
		}
	}

	second, err := ce.Embed(ctx, []string{"text"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Usage.TotalTokens != 0 {
		t.Errorf("expected zero tokens on hit, got %d", second.Usage.TotalTokens)
	}
	if second.Vectors[0][2] != 0.3 {
		t.Errorf("cached vector = %v", second.Vectors[0])
	}
	if len(inner.calls) != 1 {
		t.Errorf("expected 1 provider call, got %d", len(inner.calls))
	}
}

func TestEmbed_SendsOnlyMissesInOrder(t *testing.T) {
	inner := &mockEmbedder{vector: []float32{1}}
	s := newMapStore()
	ce := New(inner, s, "m", nil)
	s.data[ce.key("b")] = encodeVector([]float32{9})

	res, err := ce.Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := inner.calls[0]; len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("provider got %v", got)
	}
	if res.Vectors[0][0] != 1 || res.Vectors[1][0] != 9 || res.Vectors[2][0] != 1 {
		t.Errorf("vectors = %v", res.Vectors)
	}
}

func TestEmbed_NamespaceSeparatesModels(t *testing.T) {
	a := New(&mockEmbedder{}, newMapStore(), "model-a", nil)
	b := New(&mockEmbedder{}, newMapStore(), "model-b", nil)
	if a.key("same") == b.key("same") {
		t.Error("keys collide across namespaces")
	}
}

func TestEmbed_InnerError(t *testing.T) {
	innerErr := errors.New("provider down")
	ce := New(&mockEmbedder{err: innerErr}, newMapStore(), "m", nil)

	if _, err := ce.Embed(context.Background(), []string{"x"}); !errors.Is(err, innerErr) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
}

func TestEmbed_StoreFailuresDegrade(t *testing.T) {
	s := newMapStore()
	s.getErr = errors.New("redis down")
	s.setErr = errors.New("redis down")
	inner := &mockEmbedder{vector: []float32{0.5}}

	res, err := New(inner, s, "m", nil).Embed(context.Background(), []string{"x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Vectors[0][0] != 0.5 {
		t.Errorf("vectors = %v", res.Vectors)
	}
}

func TestEmbed_CorruptEntryIsMiss(t *testing.T) {
	s := newMapStore()
	inner := &mockEmbedder{vector: []float32{0.5}}
	ce := New(inner, s, "m", nil)
	s.data[ce.key("x")] = []byte{1, 2, 3}

	if _, err := ce.Embed(context.Background(), []string{"x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.calls) != 1 {
		t.Errorf("expected provider call for corrupt entry")
	}
}

func TestEmbed_Metrics(t *testing.T) {
	ce := New(&mockEmbedder{vector: []float32{1}}, newMapStore(), "metrics", metrics.EmbeddingCacheTotal)
	hits := metrics.EmbeddingCacheTotal.WithLabelValues("hit")
	misses := metrics.EmbeddingCacheTotal.WithLabelValues("miss")
	h0, m0 := testutil.ToFloat64(hits), testutil.ToFloat64(misses)

	_, _ = ce.Embed(context.Background(), []string{"q"})
	_, _ = ce.Embed(context.Background(), []string{"q"})

	if d := testutil.ToFloat64(hits) - h0; d != 1 {
		t.Errorf("hit delta = %v", d)
	}
	if d := testutil.ToFloat64(misses) - m0; d != 1 {
		t.Errorf("miss delta = %v", d)
	}
}

func TestVectorCodec(t *testing.T) {
	in := []float32{0, -1.5, 3.25}
	out, err := decodeVector(encodeVector(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
	if _, err := decodeVector([]byte{1}); err == nil {
		t.Error("expected error for truncated data")
	}
}
