// Package embcache caches embeddings in a key-value store.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/clusterops/internal/db"
	"github.com/kailas-cloud/clusterops/internal/domain"
)

const keyPrefix = "clusterops:emb:"

// store is the consumer interface for the embedding cache.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Embedder is a caching domain.Embedder decorator. Cache failures degrade
// to provider calls and are only logged.
type Embedder struct {
	inner      domain.Embedder
	store      store
	namespace  string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

var _ domain.Embedder = (*Embedder)(nil)

// New creates a caching decorator. namespace separates models sharing one
// store; cacheTotal has the label "result" ("hit"/"miss") and may be nil.
func New(inner domain.Embedder, s store, namespace string, cacheTotal *prometheus.CounterVec) *Embedder {
	return &Embedder{
		inner:      inner,
		store:      s,
		namespace:  namespace,
		cacheTotal: cacheTotal,
		logger:     zap.NewNop(),
	}
}

// WithTTL sets the expiry of cached entries; zero keeps them forever.
func (c *Embedder) WithTTL(ttl time.Duration) *Embedder {
	c.ttl = ttl
	return c
}

// WithLogger sets the logger.
func (c *Embedder) WithLogger(l *zap.Logger) *Embedder {
	if l != nil {
		c.logger = l
	}
	return c
}

// Embed serves cached vectors and sends only the misses to the inner
// embedder. Usage counts provider tokens only, so an all-hit call reports zero.
func (c *Embedder) Embed(ctx context.Context, texts []string) (domain.Embeddings, error) {
	if len(texts) == 0 {
		return domain.Embeddings{}, nil
	}

	vectors := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		keys[i] = c.key(text)
		if vec, ok := c.get(ctx, keys[i]); ok {
			vectors[i] = vec
			c.inc("hit")
			continue
		}
		c.inc("miss")
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return domain.Embeddings{Vectors: vectors}, nil
	}

	res, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return domain.Embeddings{}, fmt.Errorf("embed cache misses: %w", err)
	}
	if err := res.CheckCount(len(missTexts)); err != nil {
		return domain.Embeddings{}, err
	}
	for j, i := range missIdx {
		vectors[i] = res.Vectors[j]
		c.put(ctx, keys[i], res.Vectors[j])
	}
	return domain.Embeddings{Vectors: vectors, Usage: res.Usage}, nil
}

func (c *Embedder) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *Embedder) key(text string) string {
	h := sha256.Sum256([]byte(text))
	return keyPrefix + c.namespace + ":" + hex.EncodeToString(h[:])
}

func (c *Embedder) get(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	vec, err := decodeVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (c *Embedder) put(ctx context.Context, key string, vec []float32) {
	if err := c.store.SetWithTTL(ctx, key, encodeVector(vec), c.ttl); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

// encodeVector packs float32 values little-endian.
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid cached embedding: %d bytes", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
