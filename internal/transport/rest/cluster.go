package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	domcluster "github.com/kailas-cloud/clusterops/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
	"github.com/kailas-cloud/clusterops/internal/domain/search/direction"
	"github.com/kailas-cloud/clusterops/internal/domain/search/request"
	"github.com/kailas-cloud/clusterops/internal/domain/search/result"
)

// UpsertCentroids stores centroids under the vector field/alias namespace.
func (c *Client) UpsertCentroids(
	ctx context.Context, dataset, vectorField, alias string, centroids []domcluster.Centroid,
) error {
	path, err := datasetPath(dataset, "/cluster/centroids/insert")
	if err != nil {
		return fmt.Errorf("centroids_insert: %w", err)
	}
	body := centroidsInsertRequest{
		ClusterCenters: make([]centroidDTO, len(centroids)),
		VectorFields:   []string{vectorField},
		Alias:          alias,
	}
	for i, ct := range centroids {
		body.ClusterCenters[i] = centroidDTO{ID: ct.Label, CentroidVector: ct.Vector}
	}
	return c.do(ctx, http.MethodPost, "centroids_insert", path, body, nil)
}

// ListCentroids returns the centroids stored for a vector field/alias.
func (c *Client) ListCentroids(ctx context.Context, dataset, vectorField, alias string) ([]domcluster.Centroid, error) {
	path, err := datasetPath(dataset, "/cluster/centroids/list")
	if err != nil {
		return nil, fmt.Errorf("centroids_list: %w", err)
	}
	var resp centroidsListResponse
	body := centroidsListRequest{VectorFields: []string{vectorField}, Alias: alias}
	if err := c.do(ctx, http.MethodPost, "centroids_list", path, body, &resp); err != nil {
		return nil, err
	}
	out := make([]domcluster.Centroid, len(resp.Results))
	for i, r := range resp.Results {
		out[i] = domcluster.Centroid{Label: r.ID, Vector: r.CentroidVector}
	}
	return out, nil
}

// QueryNearest lists documents closest to or furthest from their centroid.
func (c *Client) QueryNearest(ctx context.Context, q request.Nearest) (result.Nearest, error) {
	suffix, endpoint := "/cluster/centroids/list_closest_to_center", "centroids_closest"
	if q.Direction() == direction.Furthest {
		suffix, endpoint = "/cluster/centroids/list_furthest_from_center", "centroids_furthest"
	}
	t := q.Target()
	path, err := datasetPath(t.Dataset, suffix)
	if err != nil {
		return result.Nearest{}, fmt.Errorf("%s: %w", endpoint, err)
	}

	body := nearestRequest{
		VectorFields:     []string{t.VectorField},
		Alias:            t.Alias,
		ClusterIDs:       nonNilStrings(q.ClusterIDs()),
		SelectFields:     nonNilStrings(q.SelectFields()),
		Filters:          filtersToDTO(q.Filters()),
		PageSize:         q.PageSize(),
		Page:             q.Page(),
		SimilarityMetric: q.SimilarityMetric(),
		Approx:           q.Approx(),
		SumFields:        q.SumFields(),
		MinScore:         q.MinScore(),
		IncludeVector:    q.IncludeVector(),
	}
	var resp nearestResponse
	if err := c.do(ctx, http.MethodPost, endpoint, path, body, &resp); err != nil {
		return result.Nearest{}, err
	}

	groups := make(map[string][]result.Hit, len(resp.Results))
	for label, docs := range resp.Results {
		hits := make([]result.Hit, len(docs))
		for i, d := range docs {
			doc := domdoc.Document(d)
			score := scoreOf(doc[ScoreField])
			delete(doc, ScoreField)
			hits[i] = result.NewHit(score, doc)
		}
		groups[label] = hits
	}
	return result.NewNearest(groups), nil
}

func scoreOf(v any) float64 {
	switch s := v.(type) {
	case json.Number:
		f, _ := s.Float64()
		return f
	case float64:
		return s
	default:
		return 0
	}
}

// Aggregate runs an aggregation query over the clusters of a vector field.
func (c *Client) Aggregate(ctx context.Context, q request.Aggregate) (result.Aggregate, error) {
	path, err := datasetPath(q.Dataset(), "/cluster/aggregate")
	if err != nil {
		return result.Aggregate{}, fmt.Errorf("cluster_aggregate: %w", err)
	}
	body := aggregateRequest{
		VectorFields: q.VectorFields(),
		Alias:        q.Alias(),
		AggregationQuery: aggregationDTO{
			GroupBy: q.GroupBy(),
			Metrics: q.Metrics(),
			Sort:    q.Sort(),
		},
		Filters:  filtersToDTO(q.Filters()),
		PageSize: q.PageSize(),
		Page:     q.Page(),
		Asc:      q.Asc(),
		Flatten:  q.Flatten(),
	}
	var resp aggregateResponse
	if err := c.do(ctx, http.MethodPost, "cluster_aggregate", path, body, &resp); err != nil {
		return result.Aggregate{}, err
	}
	return result.NewAggregate(resp.Results), nil
}
