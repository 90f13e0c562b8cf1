package chi_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kailas-cloud/clusterops/internal/domain"
	domcluster "github.com/kailas-cloud/clusterops/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
	"github.com/kailas-cloud/clusterops/internal/domain/search/direction"
	"github.com/kailas-cloud/clusterops/internal/domain/search/request"
	"github.com/kailas-cloud/clusterops/internal/repository/memory"
	chitransport "github.com/kailas-cloud/clusterops/internal/transport/chi"
	"github.com/kailas-cloud/clusterops/internal/transport/rest"
)

func newEmulatorClient(t *testing.T, apiKey string) *rest.Client {
	t.Helper()
	srv := httptest.NewServer(chitransport.NewRouter(
		chitransport.NewServer(memory.New(), nil), []string{"proj:secret"}, nil,
	))
	t.Cleanup(srv.Close)

	c, err := rest.New(rest.Config{
		BaseURL:  srv.URL,
		Project:  "proj",
		APIKey:   apiKey,
		PageSize: 2,
	})
	if err != nil {
		t.Fatalf("rest.New: %v", err)
	}
	return c
}

func TestRoundTrip_Unauthorized(t *testing.T) {
	c := newEmulatorClient(t, "wrong")
	if _, err := c.ListDatasets(context.Background()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRoundTrip_DatasetsAndDocuments(t *testing.T) {
	ctx := context.Background()
	c := newEmulatorClient(t, "secret")

	if err := c.CreateDataset(ctx, "movies", nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := c.CreateDataset(ctx, "movies", nil); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	res, err := c.InsertDocuments(ctx, "movies", []domdoc.Document{
		{domdoc.IDField: "a", "title": "A", "v_vector_": []float64{1, 0}},
		{domdoc.IDField: "b", "title": "B", "v_vector_": []float64{0, 1}},
		{domdoc.IDField: "c", "title": "C"},
	})
	if err != nil || res.Inserted() != 3 {
		t.Fatalf("insert: %v %+v", err, res)
	}

	var pages [][]string
	err = c.FetchDocuments(ctx, "movies", []string{"v_vector_"}, true, func(page []domdoc.Document) error {
		pages = append(pages, domdoc.IDs(page))
		return nil
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(pages) != 2 || len(pages[0]) != 2 || len(pages[1]) != 1 {
		t.Errorf("pages = %v", pages)
	}

	upd, err := c.UpdateDocuments(ctx, "movies", []domdoc.Document{
		{domdoc.IDField: "a", "genre": "drama"},
		{domdoc.IDField: "zz", "genre": "drama"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if failed := upd.FailedIDs(); len(failed) != 1 || failed[0] != "zz" {
		t.Errorf("failed = %v", failed)
	}

	if err := c.DeleteDataset(ctx, "movies"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Schema(ctx, "movies"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRoundTrip_CentroidsAndNearest(t *testing.T) {
	ctx := context.Background()
	c := newEmulatorClient(t, "secret")

	path := domcluster.FieldPath("v_vector_", "kmeans-2")
	docs := []domdoc.Document{
		{domdoc.IDField: "a", "v_vector_": []float64{1, 0}},
		{domdoc.IDField: "b", "v_vector_": []float64{0.6, 0.4}},
		{domdoc.IDField: "c", "v_vector_": []float64{-1, 0}},
	}
	labels := []string{"cluster-0", "cluster-0", "cluster-1"}
	for i, d := range docs {
		d.Set(path, labels[i])
	}
	if _, err := c.InsertDocuments(ctx, "ds", docs); err != nil {
		t.Fatalf("insert: %v", err)
	}
	centroids := []domcluster.Centroid{
		{Label: "cluster-0", Vector: []float64{1, 0}},
		{Label: "cluster-1", Vector: []float64{-1, 0}},
	}
	if err := c.UpsertCentroids(ctx, "ds", "v_vector_", "kmeans-2", centroids); err != nil {
		t.Fatalf("upsert centroids: %v", err)
	}

	listed, err := c.ListCentroids(ctx, "ds", "v_vector_", "kmeans-2")
	if err != nil || len(listed) != 2 || listed[1].Vector[0] != -1 {
		t.Fatalf("list centroids: %v %v", listed, err)
	}

	target := request.Target{Dataset: "ds", VectorField: "v_vector_", Alias: "kmeans-2"}
	q, err := request.NewNearest(direction.Furthest, request.NearestParams{Target: target})
	if err != nil {
		t.Fatalf("NewNearest: %v", err)
	}
	res, err := c.QueryNearest(ctx, q)
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	hits := res.Hits("cluster-0")
	if len(hits) != 2 || hits[0].ID() != "b" || hits[1].Score() != 1 {
		t.Errorf("furthest cluster-0 = %+v", hits)
	}
	if _, ok := hits[0].Document()["_score"]; ok {
		t.Error("score field not stripped")
	}

	agg, err := request.NewAggregate(request.AggregateParams{
		Dataset: "ds", VectorFields: []string{"v_vector_"}, Alias: "kmeans-2",
	})
	if err != nil {
		t.Fatalf("NewAggregate: %v", err)
	}
	rows, err := c.Aggregate(ctx, agg)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(rows.Rows()) != 2 {
		t.Errorf("rows = %v", rows.Rows())
	}
}

func TestRoundTrip_OperationHistoryAndReports(t *testing.T) {
	ctx := context.Background()
	c := newEmulatorClient(t, "secret")

	if err := c.StoreOperation(ctx, "missing", domcluster.Operation{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := c.CreateDataset(ctx, "movies", nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := c.SetMetadata(ctx, "movies", map[string]any{"owner": "search"}); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	for i := range 2 {
		op := domcluster.Operation{
			Name: "cluster", VectorField: "v_vector_", Alias: "kmeans-2",
			FinishedAt: time.Date(2026, 3, 1, i, 0, 0, 0, time.UTC),
		}
		if err := c.StoreOperation(ctx, "movies", op); err != nil {
			t.Fatalf("StoreOperation: %v", err)
		}
	}
	md, err := c.Metadata(ctx, "movies")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	history, _ := md[domcluster.HistoryField].(map[string]any)
	if md["owner"] != "search" || len(history) != 2 {
		t.Errorf("metadata = %v", md)
	}

	id, err := c.StoreReport(ctx, "weekly", map[string]any{"clusters": 2})
	if err != nil {
		t.Fatalf("StoreReport: %v", err)
	}
	reports, err := c.ListReports(ctx)
	if err != nil || len(reports) != 1 || reports[0].ID != id || reports[0].Name != "weekly" {
		t.Fatalf("ListReports = %+v, %v", reports, err)
	}
	if err := c.DeleteReport(ctx, id); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}
	if err := c.DeleteReport(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
