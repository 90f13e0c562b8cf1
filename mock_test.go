package clusterops

import (
	"context"

	dombatch "github.com/kailas-cloud/clusterops/internal/domain/batch"
	domcluster "github.com/kailas-cloud/clusterops/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
	"github.com/kailas-cloud/clusterops/internal/domain/report"
	"github.com/kailas-cloud/clusterops/internal/domain/search/request"
	"github.com/kailas-cloud/clusterops/internal/domain/search/result"
	clusteruc "github.com/kailas-cloud/clusterops/internal/usecase/cluster"
	"github.com/kailas-cloud/clusterops/internal/usecase/vectorize"
)

// --- datasetRemote mock ---

type mockDatasets struct {
	listFn   func(ctx context.Context) ([]string, error)
	createFn func(ctx context.Context, id string, schema map[string]string) error
	deleteFn func(ctx context.Context, id string) error
	schemaFn func(ctx context.Context, id string) (map[string]string, error)
	metaFn   func(ctx context.Context, id string) (map[string]any, error)
}

func (m *mockDatasets) ListDatasets(ctx context.Context) ([]string, error) {
	return m.listFn(ctx)
}

func (m *mockDatasets) CreateDataset(ctx context.Context, id string, schema map[string]string) error {
	return m.createFn(ctx, id, schema)
}

func (m *mockDatasets) DeleteDataset(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockDatasets) Schema(ctx context.Context, id string) (map[string]string, error) {
	return m.schemaFn(ctx, id)
}

func (m *mockDatasets) Metadata(ctx context.Context, id string) (map[string]any, error) {
	return m.metaFn(ctx, id)
}

// --- reportRemote mock ---

type mockReports struct {
	listFn   func(ctx context.Context) ([]report.Report, error)
	storeFn  func(ctx context.Context, name string, body map[string]any) (string, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockReports) ListReports(ctx context.Context) ([]report.Report, error) {
	return m.listFn(ctx)
}

func (m *mockReports) StoreReport(ctx context.Context, name string, body map[string]any) (string, error) {
	return m.storeFn(ctx, name, body)
}

func (m *mockReports) DeleteReport(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

// --- documentRemote mock ---

type mockDocuments struct {
	insertFn func(ctx context.Context, dataset string, docs []domdoc.Document) (dombatch.Result, error)
	updateFn func(ctx context.Context, dataset string, docs []domdoc.Document) (dombatch.Result, error)
	fetchFn  func(ctx context.Context, dataset string, fields []string, includeVector bool, fn domdoc.PageFunc) error
}

func (m *mockDocuments) InsertDocuments(
	ctx context.Context, dataset string, docs []domdoc.Document,
) (dombatch.Result, error) {
	return m.insertFn(ctx, dataset, docs)
}

func (m *mockDocuments) UpdateDocuments(
	ctx context.Context, dataset string, docs []domdoc.Document,
) (dombatch.Result, error) {
	return m.updateFn(ctx, dataset, docs)
}

func (m *mockDocuments) FetchDocuments(
	ctx context.Context, dataset string, fields []string, includeVector bool, fn domdoc.PageFunc,
) error {
	return m.fetchFn(ctx, dataset, fields, includeVector, fn)
}

// --- clusterUseCase mock ---

type mockClusterUC struct {
	runFn       func(ctx context.Context, job clusteruc.Job) (clusteruc.Result, error)
	closestFn   func(ctx context.Context, p request.NearestParams) (result.Nearest, error)
	furthestFn  func(ctx context.Context, p request.NearestParams) (result.Nearest, error)
	aggregateFn func(ctx context.Context, p request.AggregateParams) (result.Aggregate, error)
	resolveFn   func(ctx context.Context, op string, t request.Target) (request.Target, error)
	target      request.Target
}

func (m *mockClusterUC) Run(ctx context.Context, job clusteruc.Job) (clusteruc.Result, error) {
	return m.runFn(ctx, job)
}

func (m *mockClusterUC) Closest(ctx context.Context, p request.NearestParams) (result.Nearest, error) {
	return m.closestFn(ctx, p)
}

func (m *mockClusterUC) Furthest(ctx context.Context, p request.NearestParams) (result.Nearest, error) {
	return m.furthestFn(ctx, p)
}

func (m *mockClusterUC) Aggregate(ctx context.Context, p request.AggregateParams) (result.Aggregate, error) {
	return m.aggregateFn(ctx, p)
}

func (m *mockClusterUC) ResolveTarget(ctx context.Context, op string, t request.Target) (request.Target, error) {
	return m.resolveFn(ctx, op, t)
}

func (m *mockClusterUC) Target() request.Target { return m.target }

// --- centroidLister mock ---

type mockCentroids struct {
	listFn func(ctx context.Context, dataset, vectorField, alias string) ([]domcluster.Centroid, error)
}

func (m *mockCentroids) ListCentroids(
	ctx context.Context, dataset, vectorField, alias string,
) ([]domcluster.Centroid, error) {
	return m.listFn(ctx, dataset, vectorField, alias)
}

// --- vectorizeUseCase mock ---

type mockVectorizeUC struct {
	runFn func(ctx context.Context, job vectorize.Job) (vectorize.Result, error)
}

func (m *mockVectorizeUC) Run(ctx context.Context, job vectorize.Job) (vectorize.Result, error) {
	return m.runFn(ctx, job)
}
