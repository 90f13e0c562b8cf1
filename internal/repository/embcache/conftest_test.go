package embcache

import (
	"context"
	"time"

	"github.com/kailas-cloud/clusterops/internal/db"
	"github.com/kailas-cloud/clusterops/internal/domain"
)

type mockEmbedder struct {
	vector []float32
	err    error
	calls  [][]string
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) (domain.Embeddings, error) {
	m.calls = append(m.calls, texts)
	if m.err != nil {
		return domain.Embeddings{}, m.err
	}
	out := domain.Embeddings{Vectors: make([][]float32, len(texts))}
	for i := range texts {
		out.Vectors[i] = m.vector
	}
	out.Usage = domain.Usage{PromptTokens: 5 * len(texts), TotalTokens: 5 * len(texts)}
	return out, nil
}

// mapStore is an in-memory store with optional failure injection.
type mapStore struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMapStore() *mapStore {
	return &mapStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mapStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}
