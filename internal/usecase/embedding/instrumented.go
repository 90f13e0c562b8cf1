// Package embedding holds the embedder decorators shared by vectorize callers.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/clusterops/internal/domain"
)

// DefaultMaxAPIBatchSize is the largest number of texts sent in one provider request.
const DefaultMaxAPIBatchSize = 256

// InstrumentedEmbedder splits large inputs into provider-sized chunks and
// logs every call. Transport metrics are recorded by the provider itself.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	maxBatch int
	logger   *zap.Logger
}

var _ domain.Embedder = (*InstrumentedEmbedder)(nil)

// NewInstrumentedEmbedder wraps inner. A nil logger disables logging.
func NewInstrumentedEmbedder(inner domain.Embedder, provider, model string, logger *zap.Logger) *InstrumentedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		maxBatch: DefaultMaxAPIBatchSize,
		logger:   logger,
	}
}

// WithMaxBatch overrides the chunk size.
func (p *InstrumentedEmbedder) WithMaxBatch(n int) *InstrumentedEmbedder {
	if n > 0 {
		p.maxBatch = n
	}
	return p
}

// Embed embeds texts chunk by chunk and concatenates the results in order.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, texts []string) (domain.Embeddings, error) {
	if len(texts) == 0 {
		return domain.Embeddings{}, nil
	}
	start := time.Now()

	out := domain.Embeddings{Vectors: make([][]float32, 0, len(texts))}
	for offset := 0; offset < len(texts); offset += p.maxBatch {
		end := min(offset+p.maxBatch, len(texts))
		chunk := texts[offset:end]

		res, err := p.inner.Embed(ctx, chunk)
		if err == nil {
			err = res.CheckCount(len(chunk))
		}
		if err != nil {
			p.logger.Error("Embedding request failed",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.Embeddings{}, fmt.Errorf("embed chunk at %d: %w", offset, err)
		}
		out.Vectors = append(out.Vectors, res.Vectors...)
		out.Usage = out.Usage.Add(res.Usage)
	}

	p.logger.Debug("Embedding completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Int("texts", len(texts)),
		zap.Duration("duration", time.Since(start)),
		zap.Int("prompt_tokens", out.Usage.PromptTokens),
		zap.Int("total_tokens", out.Usage.TotalTokens),
	)
	return out, nil
}
