package model

import (
	"context"
	"fmt"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// KMeansName is the registry name of the built-in k-means backend.
const KMeansName = "kmeans"

type kmeansBackend struct {
	k     int
	delta float64
}

// NewKMeans builds the built-in k-means model.
func NewKMeans(p Params) (Model, error) {
	if err := p.Validate(); err != nil {
		return Model{}, err
	}
	return Standard(KMeansName, p.NClusters, &kmeansBackend{k: p.NClusters, delta: p.DeltaThreshold}), nil
}

func (b *kmeansBackend) FitPredict(ctx context.Context, vectors [][]float64) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.k > len(vectors) {
		return nil, fmt.Errorf("n_clusters %d exceeds %d vectors", b.k, len(vectors))
	}

	obs := make(clusters.Observations, len(vectors))
	for i, v := range vectors {
		obs[i] = clusters.Coordinates(v)
	}

	km, err := kmeans.NewWithOptions(b.delta, nil)
	if err != nil {
		return nil, fmt.Errorf("kmeans options: %w", err)
	}
	cc, err := km.Partition(obs, b.k)
	if err != nil {
		return nil, fmt.Errorf("kmeans partition: %w", err)
	}

	labels := make([]int, len(obs))
	for i, o := range obs {
		labels[i] = cc.Nearest(o)
	}
	return labels, nil
}
