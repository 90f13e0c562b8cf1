package vectorize

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/kailas-cloud/clusterops/internal/domain"
	dombatch "github.com/kailas-cloud/clusterops/internal/domain/batch"
	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
	"github.com/kailas-cloud/clusterops/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockStore struct {
	pages    [][]domdoc.Document
	fetchErr error
	updateFn func(docs []domdoc.Document) (dombatch.Result, error)

	fetchedFields []string
	includeVector bool
	updates       [][]domdoc.Document
}

func (m *mockStore) FetchDocuments(
	_ context.Context, _ string, fields []string, includeVector bool, fn domdoc.PageFunc,
) error {
	m.fetchedFields = fields
	m.includeVector = includeVector
	if m.fetchErr != nil {
		return m.fetchErr
	}
	for _, p := range m.pages {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockStore) UpdateDocuments(_ context.Context, _ string, docs []domdoc.Document) (dombatch.Result, error) {
	m.updates = append(m.updates, docs)
	if m.updateFn != nil {
		return m.updateFn(docs)
	}
	return dombatch.NewResult(len(docs), nil), nil
}

// lengthEmbedder encodes a text as [len(text)].
type lengthEmbedder struct {
	err   error
	calls [][]string
}

func (e *lengthEmbedder) Embed(_ context.Context, texts []string) (domain.Embeddings, error) {
	e.calls = append(e.calls, texts)
	if e.err != nil {
		return domain.Embeddings{}, e.err
	}
	out := domain.Embeddings{Vectors: make([][]float32, len(texts))}
	for i, t := range texts {
		out.Vectors[i] = []float32{float32(len(t))}
	}
	out.Usage = domain.Usage{TotalTokens: len(texts)}
	return out, nil
}

func textDoc(id string, fields map[string]any) domdoc.Document {
	d := domdoc.Document{domdoc.IDField: id}
	for k, v := range fields {
		d[k] = v
	}
	return d
}

// --- Tests ---

func TestVectorFieldName(t *testing.T) {
	tests := []struct {
		field, model, want string
	}{
		{"title", "text-embedding-3-small", "title_text_embedding_3_small_vector_"},
		{"title", "BAAI/bge-en-ICL", "title_baai_bge_en_icl_vector_"},
		{"meta.title", "m", "meta.title_m_vector_"},
		{"title", "--", "title_vector_"},
	}
	for _, tc := range tests {
		if got := VectorFieldName(tc.field, tc.model); got != tc.want {
			t.Errorf("VectorFieldName(%q, %q) = %q, want %q", tc.field, tc.model, got, tc.want)
		}
	}
}

func TestRun_EncodesAndSkips(t *testing.T) {
	store := &mockStore{pages: [][]domdoc.Document{
		{
			textDoc("a", map[string]any{"title": "hello", "body": "abc"}),
			textDoc("b", map[string]any{"title": "  "}),
		},
		{
			textDoc("c", map[string]any{"body": []any{"x", "yz"}}),
			textDoc("d", map[string]any{"title": 42}),
		},
	}}
	emb := &lengthEmbedder{}
	var progress []int

	res, err := New(store, emb).Run(context.Background(), Job{
		Dataset:  "ds",
		Fields:   []string{"title", "body"},
		Model:    "mini",
		Progress: func(n int) { progress = append(progress, n) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.includeVector || len(store.fetchedFields) != 2 {
		t.Errorf("fetch fields=%v includeVector=%v", store.fetchedFields, store.includeVector)
	}
	if res.Encoded != 2 {
		t.Errorf("encoded = %d, want 2", res.Encoded)
	}
	if len(res.Skipped) != 2 || res.Skipped[0] != "b" || res.Skipped[1] != "d" {
		t.Errorf("skipped = %v", res.Skipped)
	}
	if res.Usage.TotalTokens != 3 {
		t.Errorf("tokens = %d", res.Usage.TotalTokens)
	}
	if len(emb.calls) != 2 {
		t.Errorf("expected one embed call per page, got %d", len(emb.calls))
	}
	if len(progress) != 2 || progress[1] != 4 {
		t.Errorf("progress = %v", progress)
	}

	first := store.updates[0][0]
	if len(first) != 3 {
		t.Errorf("update carries extra fields: %v", first)
	}
	if v, _ := first.Vector("title_mini_vector_"); len(v) != 1 || v[0] != 5 {
		t.Errorf("title vector = %v", v)
	}
	if v, _ := store.updates[1][0].Vector("body_mini_vector_"); v[0] != 4 {
		t.Errorf("joined list vector = %v", v)
	}
	if res.VectorFields["body"] != "body_mini_vector_" {
		t.Errorf("vector fields = %v", res.VectorFields)
	}
}

func TestRun_DocumentsWithoutIDNotEmbedded(t *testing.T) {
	store := &mockStore{pages: [][]domdoc.Document{{
		textDoc("a", map[string]any{"title": "hello"}),
		{"title": "orphan text"},
	}}}
	emb := &lengthEmbedder{}

	res, err := New(store, emb).Run(context.Background(), Job{Dataset: "ds", Fields: []string{"title"}, Model: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(emb.calls) != 1 || len(emb.calls[0]) != 1 || emb.calls[0][0] != "hello" {
		t.Errorf("embedded texts = %q", emb.calls)
	}
	if res.Usage.TotalTokens != 1 || res.Encoded != 1 {
		t.Errorf("tokens = %d encoded = %d", res.Usage.TotalTokens, res.Encoded)
	}
	if len(res.Skipped) != 0 {
		t.Errorf("skipped = %q", res.Skipped)
	}
}

func TestRun_Batches(t *testing.T) {
	page := make([]domdoc.Document, 5)
	for i := range page {
		page[i] = textDoc(string(rune('a'+i)), map[string]any{"title": "t"})
	}
	store := &mockStore{pages: [][]domdoc.Document{page}}

	if _, err := New(store, &lengthEmbedder{}).WithBatchSize(2).Run(context.Background(), Job{
		Dataset: "ds", Fields: []string{"title"}, Model: "m",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.updates) != 3 {
		t.Errorf("expected 3 batches, got %d", len(store.updates))
	}
}

func TestRun_Validation(t *testing.T) {
	tests := []struct {
		name string
		job  Job
		want error
	}{
		{"no dataset", Job{Fields: []string{"t"}, Model: "m"}, domain.ErrMissingTarget},
		{"no fields", Job{Dataset: "ds", Model: "m"}, domain.ErrMissingTarget},
		{"no model", Job{Dataset: "ds", Fields: []string{"t"}}, domain.ErrUnknownOption},
		{"vector field", Job{Dataset: "ds", Fields: []string{"t_vector_"}, Model: "m"}, domain.ErrInvalidQuery},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockStore{}
			_, err := New(store, &lengthEmbedder{}).Run(context.Background(), tc.job)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if store.fetchedFields != nil {
				t.Error("fetched before validation")
			}
		})
	}
}

func TestRun_EmbedError_NoWrites(t *testing.T) {
	store := &mockStore{pages: [][]domdoc.Document{{textDoc("a", map[string]any{"t": "x"})}}}
	embErr := errors.New("provider down")

	_, err := New(store, &lengthEmbedder{err: embErr}).Run(context.Background(), Job{
		Dataset: "ds", Fields: []string{"t"}, Model: "m",
	})
	if !errors.Is(err, embErr) {
		t.Fatalf("expected embed error, got %v", err)
	}
	if len(store.updates) != 0 {
		t.Errorf("expected no writes, got %d", len(store.updates))
	}
}

func TestRun_UpdateRejected(t *testing.T) {
	store := &mockStore{
		pages: [][]domdoc.Document{{textDoc("a", map[string]any{"t": "x"})}},
		updateFn: func(docs []domdoc.Document) (dombatch.Result, error) {
			return dombatch.NewResult(0, []string{"a"}), nil
		},
	}

	_, err := New(store, &lengthEmbedder{}).Run(context.Background(), Job{
		Dataset: "ds", Fields: []string{"t"}, Model: "m",
	})
	var rwe *domain.RemoteWriteError
	if !errors.As(err, &rwe) || rwe.Step != domain.StepUpdateDocuments || rwe.IDs[0] != "a" {
		t.Fatalf("expected RemoteWriteError for a, got %v", err)
	}
	if !errors.Is(err, domain.ErrRemoteWrite) {
		t.Error("not ErrRemoteWrite")
	}
}

func TestRun_FetchError(t *testing.T) {
	fetchErr := errors.New("boom")
	_, err := New(&mockStore{fetchErr: fetchErr}, &lengthEmbedder{}).Run(context.Background(), Job{
		Dataset: "ds", Fields: []string{"t"}, Model: "m",
	})
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestTextAt(t *testing.T) {
	d := domdoc.Document{
		"s":    " hi ",
		"list": []string{"a", "b"},
		"num":  1.5,
		"meta": map[string]any{"title": "nested"},
	}
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"s", "hi", true},
		{"list", "a b", true},
		{"num", "", false},
		{"meta.title", "nested", true},
		{"missing", "", false},
	}
	for _, tc := range tests {
		got, ok := textAt(d, tc.path)
		if got != tc.want || ok != tc.ok {
			t.Errorf("textAt(%q) = %q, %v; want %q, %v", tc.path, got, ok, tc.want, tc.ok)
		}
	}
}
