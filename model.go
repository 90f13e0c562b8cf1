package clusterops

import (
	"fmt"

	"github.com/kailas-cloud/clusterops/internal/model"
)

// Model is a clustering backend wrapped in one of the supported calling
// conventions.
type Model = model.Model

// Kind is the calling convention of a Model.
type Kind = model.Kind

// Supported kinds.
const (
	KindStandard        = model.KindStandard
	KindAttributeLabels = model.KindAttributeLabels
	KindTrainAssign     = model.KindTrainAssign
	KindCallable        = model.KindCallable
	KindCustom          = model.KindCustom
)

// Backend contracts, one per kind.
type (
	FitPredictor  = model.FitPredictor
	LabelFitter   = model.LabelFitter
	TrainAssigner = model.TrainAssigner
	ClusterFunc   = model.Func
	Clusterer     = model.Clusterer
)

// Params are the hyperparameters of built-in models.
type Params = model.Params

// ModelFactory builds a named model from parameters.
type ModelFactory = model.Factory

// ModelFromName builds a registered model. Unknown names fail with
// ErrUnsupportedModel and unknown parameters with ErrUnknownOption.
func ModelFromName(name string, params map[string]any) (Model, error) {
	p, err := model.ParseParams(params)
	if err != nil {
		return Model{}, fmt.Errorf("model %q: %w", name, err)
	}
	return model.FromName(name, p)
}

// RegisterModel makes a factory available to ModelFromName and configuration files.
func RegisterModel(name string, f ModelFactory) error {
	return model.Register(name, f)
}

// ModelNames lists the registered model names.
func ModelNames() []string { return model.Names() }

// Standard wraps a backend with a single FitPredict call.
func Standard(name string, nClusters int, m FitPredictor) Model {
	return model.Standard(name, nClusters, m)
}

// AttributeLabels wraps a backend that exposes labels after Fit.
func AttributeLabels(name string, nClusters int, m LabelFitter) Model {
	return model.AttributeLabels(name, nClusters, m)
}

// TrainAssign wraps a backend that trains then assigns on float32 data.
func TrainAssign(name string, nClusters int, m TrainAssigner) Model {
	return model.TrainAssign(name, nClusters, m)
}

// Callable wraps a clustering function.
func Callable(name string, nClusters int, fn ClusterFunc) Model {
	return model.Callable(name, nClusters, fn)
}

// Custom wraps a self-describing backend.
func Custom(c Clusterer) Model {
	return model.Custom(c)
}
