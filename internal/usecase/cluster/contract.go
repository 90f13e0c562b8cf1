package cluster

import (
	"context"

	dombatch "github.com/kailas-cloud/clusterops/internal/domain/batch"
	domcluster "github.com/kailas-cloud/clusterops/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
	"github.com/kailas-cloud/clusterops/internal/domain/search/request"
	"github.com/kailas-cloud/clusterops/internal/domain/search/result"
)

// DocumentStore reads and updates dataset documents.
type DocumentStore interface {
	FetchDocuments(ctx context.Context, dataset string, fields []string, includeVector bool, fn domdoc.PageFunc) error
	UpdateDocuments(ctx context.Context, dataset string, docs []domdoc.Document) (dombatch.Result, error)
}

// CentroidStore persists cluster centroids under a vector field/alias namespace.
type CentroidStore interface {
	UpsertCentroids(ctx context.Context, dataset, vectorField, alias string, centroids []domcluster.Centroid) error
}

// Querier runs the service-side cluster queries.
type Querier interface {
	QueryNearest(ctx context.Context, q request.Nearest) (result.Nearest, error)
	Aggregate(ctx context.Context, q request.Aggregate) (result.Aggregate, error)
}

// OperationStore records finished runs in the dataset metadata.
type OperationStore interface {
	StoreOperation(ctx context.Context, dataset string, op domcluster.Operation) error
}

// Remote is the hosted service as seen by the orchestrator.
type Remote interface {
	DocumentStore
	CentroidStore
	Querier
	OperationStore
}

// Notifier tells the user about parameters that were filled in from defaults.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

// Hook runs after a successful clustering run.
type Hook func(ctx context.Context, res Result) error
