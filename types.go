package clusterops

import (
	"github.com/kailas-cloud/clusterops/internal/domain"
	dombatch "github.com/kailas-cloud/clusterops/internal/domain/batch"
	domcluster "github.com/kailas-cloud/clusterops/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
	"github.com/kailas-cloud/clusterops/internal/domain/report"
	"github.com/kailas-cloud/clusterops/internal/domain/search/filter"
	"github.com/kailas-cloud/clusterops/internal/domain/search/request"
	"github.com/kailas-cloud/clusterops/internal/domain/search/result"
	clusteruc "github.com/kailas-cloud/clusterops/internal/usecase/cluster"
	"github.com/kailas-cloud/clusterops/internal/usecase/vectorize"
)

// Document is a field map with a unique "_id". Nested fields are addressed
// with dotted paths.
type Document = domdoc.Document

// PageFunc receives one page of fetched documents.
type PageFunc = domdoc.PageFunc

// IDField is the document identifier field.
const IDField = domdoc.IDField

// BulkResult reports a bulk insert or update.
type BulkResult = dombatch.Result

// Centroid is the mean vector of one cluster.
type Centroid = domcluster.Centroid

// Operation is one entry of a dataset operation history.
type Operation = domcluster.Operation

// OperationHistoryField is the dataset metadata key of the operation history.
const OperationHistoryField = domcluster.HistoryField

// Report is a stored cluster report.
type Report = report.Report

// Formatter turns raw cluster codes into labels.
type Formatter = domcluster.Formatter

// Target names a clustering: dataset, vector field and alias.
type Target = request.Target

// Query parameters. Empty target parts default to the last used target.
type (
	NearestParams   = request.NearestParams
	AggregateParams = request.AggregateParams
	GroupBy         = request.GroupBy
	Metric          = request.Metric
)

// Query results.
type (
	NearestResult   = result.Nearest
	Hit             = result.Hit
	AggregateResult = result.Aggregate
)

// Filter is one validated query condition.
type Filter = filter.Condition

// FilterType is the kind of a filter condition.
type FilterType = filter.Type

// Filter types.
const (
	FilterExactMatch = filter.TypeExactMatch
	FilterContains   = filter.TypeContains
	FilterCategories = filter.TypeCategories
	FilterExists     = filter.TypeExists
	FilterNumeric    = filter.TypeNumeric
	FilterDate       = filter.TypeDate
	FilterIDs        = filter.TypeIDs
)

// NewFilter validates a filter condition, e.g. NewFilter("price", FilterNumeric, ">=", 10).
func NewFilter(field string, ft FilterType, condition string, value any) (Filter, error) {
	return filter.New(field, ft, condition, value)
}

// RunResult summarizes a clustering run.
type RunResult = clusteruc.Result

// Hook runs after every successful clustering run. A hook error is returned
// together with the result.
type Hook = clusteruc.Hook

// Embedder converts texts to vectors, one per text in input order.
type Embedder = domain.Embedder

// EmbedderFunc adapts a function to Embedder.
type EmbedderFunc = domain.EmbedderFunc

// Embeddings are the vectors and token usage of one Embed call.
type Embeddings = domain.Embeddings

// Usage counts embedding tokens.
type Usage = domain.Usage

// VectorizeResult summarizes a vectorize run.
type VectorizeResult = vectorize.Result

// VectorFieldName returns the vector field a text field is encoded into.
func VectorFieldName(field, model string) string {
	return vectorize.VectorFieldName(field, model)
}
