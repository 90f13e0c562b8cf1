package clusterops

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/clusterops/internal/usecase/vectorize"
)

// VectorizeRequest encodes text fields of a dataset.
type VectorizeRequest struct {
	Dataset string
	// Fields are the (dotted) text fields to encode.
	Fields []string
	// Progress is called after every processed page with the running total.
	Progress func(processed int)
}

// Vectorize embeds every non-empty text field value and writes the vector
// to VectorFieldName(field, model). Documents without text in any field are
// skipped. Pages are written as they are encoded; a failure leaves earlier
// pages written.
func (c *Client) Vectorize(ctx context.Context, req VectorizeRequest) (_ VectorizeResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("vectorize", start, err) }()

	if c.vectorizer == nil {
		return VectorizeResult{}, fmt.Errorf(
			"vectorize: no embedder configured (use WithOpenAI or WithEmbedder): %w", ErrEmbeddingProvider)
	}
	res, err := c.vectorizer.Run(ctx, vectorize.Job{
		Dataset:  req.Dataset,
		Fields:   req.Fields,
		Model:    c.embModel,
		Progress: req.Progress,
	})
	if err != nil {
		return res, fmt.Errorf("vectorize: %w", err)
	}
	return res, nil
}
