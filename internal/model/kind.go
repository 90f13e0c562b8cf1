// Package model adapts clustering backends to a single fit-and-label contract.
//
// Every backend is wrapped in a Model of one closed Kind. The orchestrator only
// calls Model.FitPredict and never inspects the wrapped value for methods.
package model

import "context"

// Kind is the calling convention of a wrapped clustering backend.
type Kind int

// Supported kinds.
const (
	// KindStandard backends return labels from a single fit-predict call.
	KindStandard Kind = iota + 1
	// KindAttributeLabels backends fit, then expose labels as state.
	KindAttributeLabels
	// KindTrainAssign backends train on float32 data, then assign.
	KindTrainAssign
	// KindCallable is a plain function.
	KindCallable
	// KindCustom backends describe themselves through the Clusterer interface.
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindAttributeLabels:
		return "attribute_labels"
	case KindTrainAssign:
		return "train_assign"
	case KindCallable:
		return "callable"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// FitPredictor fits and labels in one call.
type FitPredictor interface {
	FitPredict(ctx context.Context, vectors [][]float64) ([]int, error)
}

// LabelFitter fits and keeps the labels of the last fit.
type LabelFitter interface {
	Fit(ctx context.Context, vectors [][]float64) error
	Labels() []int
}

// TrainAssigner trains centroids, then assigns each vector to one.
type TrainAssigner interface {
	Train(ctx context.Context, vectors [][]float32) error
	Assign(ctx context.Context, vectors [][]float32) ([]int, error)
}

// Func is a clustering function.
type Func func(ctx context.Context, vectors [][]float64) ([]int, error)

// Clusterer is a user-defined backend that names itself.
type Clusterer interface {
	FitPredictor
	Name() string
	NClusters() int
}
