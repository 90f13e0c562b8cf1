package clusterops

import (
	"context"
	"fmt"
	"time"

	clusteruc "github.com/kailas-cloud/clusterops/internal/usecase/cluster"
)

// RunRequest is one clustering run. Empty Dataset and VectorField default to
// the last used target, an empty Alias to the model alias ("kmeans-8"), a
// zero Model to the client model.
type RunRequest struct {
	Dataset     string
	VectorField string
	Alias       string
	Model       Model

	// Formatter overrides the client outlier settings.
	Formatter *Formatter
	// Progress is called after every fetched page with the running total.
	Progress func(fetched int)
	// Metadata is stored with the run in the dataset operation history.
	Metadata map[string]any
}

// ClusterOps runs clusterings and queries their results. It remembers the
// target of the last run and uses it, with a notice, for parameters left
// empty. Queries do not change the remembered target.
type ClusterOps struct {
	svc       clusterUseCase
	centroids centroidLister
	model     Model
	formatter *Formatter
	obs       *observer
}

// Run fetches the vectors, fits the model, writes a label to every document
// that has the vector field and stores one centroid per label.
//
// Validation failures return before any remote write. A failed write returns
// a *RemoteWriteError and is not rolled back.
func (o *ClusterOps) Run(ctx context.Context, req RunRequest) (_ RunResult, err error) {
	start := time.Now()
	defer func() { o.obs.observe("cluster.run", start, err) }()

	m := req.Model
	if m.Kind() == 0 {
		m = o.model
	}
	formatter := req.Formatter
	if formatter == nil {
		formatter = o.formatter
	}
	res, err := o.svc.Run(ctx, clusteruc.Job{
		Dataset:     req.Dataset,
		VectorField: req.VectorField,
		Alias:       req.Alias,
		Model:       m,
		Formatter:   formatter,
		Progress:    req.Progress,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return res, fmt.Errorf("cluster: %w", err)
	}
	return res, nil
}

// Closest lists the documents of each cluster closest to its centroid.
func (o *ClusterOps) Closest(ctx context.Context, p NearestParams) (_ NearestResult, err error) {
	start := time.Now()
	defer func() { o.obs.observe("cluster.closest", start, err) }()

	res, err := o.svc.Closest(ctx, p)
	if err != nil {
		return NearestResult{}, fmt.Errorf("cluster: %w", err)
	}
	return res, nil
}

// Furthest lists the documents of each cluster furthest from its centroid.
func (o *ClusterOps) Furthest(ctx context.Context, p NearestParams) (_ NearestResult, err error) {
	start := time.Now()
	defer func() { o.obs.observe("cluster.furthest", start, err) }()

	res, err := o.svc.Furthest(ctx, p)
	if err != nil {
		return NearestResult{}, fmt.Errorf("cluster: %w", err)
	}
	return res, nil
}

// Aggregate groups and summarizes the documents of each cluster.
// Empty GroupBy, Metrics, Sort and Filters mean no constraint.
func (o *ClusterOps) Aggregate(ctx context.Context, p AggregateParams) (_ AggregateResult, err error) {
	start := time.Now()
	defer func() { o.obs.observe("cluster.aggregate", start, err) }()

	res, err := o.svc.Aggregate(ctx, p)
	if err != nil {
		return AggregateResult{}, fmt.Errorf("cluster: %w", err)
	}
	return res, nil
}

// Centroids lists the stored centroids of a clustering. Empty target parts
// default to the last used target with a notice.
func (o *ClusterOps) Centroids(ctx context.Context, t Target) (_ []Centroid, err error) {
	start := time.Now()
	defer func() { o.obs.observe("cluster.centroids", start, err) }()

	t, err = o.svc.ResolveTarget(ctx, "centroids", t)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}

	centroids, err := o.centroids.ListCentroids(ctx, t.Dataset, t.VectorField, t.Alias)
	if err != nil {
		return nil, fmt.Errorf("cluster: centroids: %w", err)
	}
	return centroids, nil
}

// Target returns the last used target.
func (o *ClusterOps) Target() Target { return o.svc.Target() }
