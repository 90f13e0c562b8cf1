package model

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/clusterops/internal/domain"
	"github.com/kailas-cloud/clusterops/internal/domain/cluster"
)

// Model is a clustering backend wrapped in one of the closed kinds.
type Model struct {
	kind      Kind
	name      string
	nClusters int

	standard FitPredictor
	attr     LabelFitter
	trainer  TrainAssigner
	fn       Func
}

// Standard wraps a fit-predict backend.
func Standard(name string, nClusters int, m FitPredictor) Model {
	return Model{kind: KindStandard, name: name, nClusters: nClusters, standard: m}
}

// AttributeLabels wraps a fit-then-read-labels backend.
func AttributeLabels(name string, nClusters int, m LabelFitter) Model {
	return Model{kind: KindAttributeLabels, name: name, nClusters: nClusters, attr: m}
}

// TrainAssign wraps a train-then-assign backend.
func TrainAssign(name string, nClusters int, m TrainAssigner) Model {
	return Model{kind: KindTrainAssign, name: name, nClusters: nClusters, trainer: m}
}

// Callable wraps a function. nClusters may be 0 when unknown.
func Callable(name string, nClusters int, fn Func) Model {
	return Model{kind: KindCallable, name: name, nClusters: nClusters, fn: fn}
}

// Custom wraps a self-describing backend.
func Custom(c Clusterer) Model {
	if c == nil {
		return Model{kind: KindCustom}
	}
	return Model{kind: KindCustom, name: c.Name(), nClusters: c.NClusters(), standard: c}
}

// Kind returns the calling convention.
func (m Model) Kind() Kind { return m.kind }

// Name returns the backend name.
func (m Model) Name() string { return m.name }

// NClusters returns the configured cluster count, 0 when unknown.
func (m Model) NClusters() int { return m.nClusters }

// Alias returns the default alias for results of this model.
func (m Model) Alias() string {
	name := m.name
	if name == "" {
		name = m.kind.String()
	}
	return cluster.Alias(name, m.nClusters)
}

// FitPredict fits the backend and returns one raw label per vector.
func (m Model) FitPredict(ctx context.Context, vectors [][]float64) ([]int, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("fit %s: %w", m.name, domain.ErrEmptyInput)
	}
	if err := checkRectangular(vectors); err != nil {
		return nil, fmt.Errorf("fit %s: %w", m.name, err)
	}

	labels, err := m.call(ctx, vectors)
	if err != nil {
		return nil, err
	}
	if len(labels) != len(vectors) {
		return nil, fmt.Errorf(
			"%s returned %d labels for %d vectors: %w",
			m.name, len(labels), len(vectors), domain.ErrShapeMismatch,
		)
	}
	return labels, nil
}

func (m Model) call(ctx context.Context, vectors [][]float64) ([]int, error) {
	switch m.kind {
	case KindStandard, KindCustom:
		if m.standard == nil {
			break
		}
		labels, err := m.standard.FitPredict(ctx, vectors)
		if err != nil {
			return nil, fmt.Errorf("fit predict %s: %w", m.name, err)
		}
		return labels, nil
	case KindAttributeLabels:
		if m.attr == nil {
			break
		}
		if err := m.attr.Fit(ctx, vectors); err != nil {
			return nil, fmt.Errorf("fit %s: %w", m.name, err)
		}
		return m.attr.Labels(), nil
	case KindTrainAssign:
		if m.trainer == nil {
			break
		}
		data := toFloat32(vectors)
		if err := m.trainer.Train(ctx, data); err != nil {
			return nil, fmt.Errorf("train %s: %w", m.name, err)
		}
		labels, err := m.trainer.Assign(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("assign %s: %w", m.name, err)
		}
		return labels, nil
	case KindCallable:
		if m.fn == nil {
			break
		}
		labels, err := m.fn(ctx, vectors)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", m.name, err)
		}
		return labels, nil
	}
	return nil, fmt.Errorf("%s model %q has no backend: %w", m.kind, m.name, domain.ErrUnsupportedModel)
}

func checkRectangular(vectors [][]float64) error {
	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("vector 0 is empty: %w", domain.ErrShapeMismatch)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has %d dimensions, want %d: %w", i, len(v), dim, domain.ErrShapeMismatch)
		}
	}
	return nil
}

func toFloat32(vectors [][]float64) [][]float32 {
	out := make([][]float32, len(vectors))
	for i, v := range vectors {
		row := make([]float32, len(v))
		for j, f := range v {
			row[j] = float32(f)
		}
		out[i] = row
	}
	return out
}
