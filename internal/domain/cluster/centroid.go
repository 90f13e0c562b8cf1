package cluster

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/kailas-cloud/clusterops/internal/domain"
	"github.com/kailas-cloud/clusterops/internal/domain/document"
)

// CentroidVectorField is the vector field of a centroid document.
const CentroidVectorField = "centroid_vector"

// Centroid is the mean vector of one cluster.
type Centroid struct {
	Label  string
	Vector []float64
	Size   int
}

// Document renders the centroid in the remote store's wire shape.
func (c Centroid) Document() map[string]any {
	return map[string]any{
		document.IDField:    c.Label,
		CentroidVectorField: c.Vector,
	}
}

// ComputeCentroids groups vectors by label and averages each group element-wise.
// Centroids are returned in order of first label appearance.
func ComputeCentroids(vectors [][]float64, labels []string) ([]Centroid, error) {
	if len(vectors) != len(labels) {
		return nil, fmt.Errorf(
			"%d vectors for %d labels: %w", len(vectors), len(labels), domain.ErrShapeMismatch,
		)
	}
	if len(vectors) == 0 {
		return nil, nil
	}

	dim := len(vectors[0])
	sums := make(map[string][]float64)
	counts := make(map[string]int)
	order := make([]string, 0)

	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf(
				"vector %d has %d dimensions, want %d: %w", i, len(v), dim, domain.ErrShapeMismatch,
			)
		}
		label := labels[i]
		sum, ok := sums[label]
		if !ok {
			sum = make([]float64, dim)
			sums[label] = sum
			order = append(order, label)
		}
		floats.Add(sum, v)
		counts[label]++
	}

	out := make([]Centroid, len(order))
	for i, label := range order {
		mean := sums[label]
		floats.Scale(1/float64(counts[label]), mean)
		out[i] = Centroid{Label: label, Vector: mean, Size: counts[label]}
	}
	return out, nil
}
