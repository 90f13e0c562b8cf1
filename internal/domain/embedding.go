package domain

import (
	"context"
	"fmt"
)

// Usage is the token consumption reported by an embedding provider.
type Usage struct {
	PromptTokens int
	TotalTokens  int
}

// Add returns the sum of two usages.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		PromptTokens: u.PromptTokens + o.PromptTokens,
		TotalTokens:  u.TotalTokens + o.TotalTokens,
	}
}

// Embeddings is the output of one embedding call: one vector per input text,
// in input order.
type Embeddings struct {
	Vectors [][]float32
	Usage   Usage
}

// Embedder turns texts into vectors. Implementations return exactly one
// vector per text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) (Embeddings, error)
}

// EmbedderFunc adapts a function to Embedder.
type EmbedderFunc func(ctx context.Context, texts []string) (Embeddings, error)

// Embed calls f.
func (f EmbedderFunc) Embed(ctx context.Context, texts []string) (Embeddings, error) {
	return f(ctx, texts)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CheckCount verifies that a provider answered every input.
func (e Embeddings) CheckCount(inputs int) error {
	if len(e.Vectors) != inputs {
		return fmt.Errorf("%d vectors for %d texts: %w", len(e.Vectors), inputs, ErrEmbeddingProvider)
	}
	return nil
}

// InstructionEmbedder prepends a fixed instruction to every text, as
// required by instruction-tuned embedding models.
type InstructionEmbedder struct {
	inner       Embedder
	instruction string
}

// NewInstructionEmbedder wraps inner. An empty instruction is a no-op.
func NewInstructionEmbedder(inner Embedder, instruction string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, instruction: instruction}
}

// Embed prefixes every text and delegates.
func (e *InstructionEmbedder) Embed(ctx context.Context, texts []string) (Embeddings, error) {
	prefixed := texts
	if e.instruction != "" {
		prefixed = make([]string, len(texts))
		for i, t := range texts {
			prefixed[i] = e.instruction + t
		}
	}
	res, err := e.inner.Embed(ctx, prefixed)
	if err != nil {
		return Embeddings{}, fmt.Errorf("instruction embed: %w", err)
	}
	return res, nil
}
