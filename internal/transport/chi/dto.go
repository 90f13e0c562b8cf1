package chi

import (
	"fmt"

	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
	"github.com/kailas-cloud/clusterops/internal/domain/search/filter"
	"github.com/kailas-cloud/clusterops/internal/domain/search/request"
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest    = "bad_request"
	codeUnauthorized  = "unauthorized"
	codeNotFound      = "not_found"
	codeAlreadyExists = "already_exists"
	codeInternal      = "internal_error"
)

type metadataRequest struct {
	Metadata map[string]any `json:"metadata"`
}

type reportCreateRequest struct {
	Name   string         `json:"name"`
	Report map[string]any `json:"report"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createDatasetRequest struct {
	ID     string            `json:"id"`
	Schema map[string]string `json:"schema"`
}

type documentsRequest struct {
	Documents []map[string]any `json:"documents"`
}

type bulkResponse struct {
	Inserted        int      `json:"inserted"`
	FailedDocuments []string `json:"failed_documents"`
}

type getWhereRequest struct {
	SelectFields  []string    `json:"select_fields"`
	PageSize      int         `json:"page_size"`
	Cursor        string      `json:"cursor"`
	IncludeVector bool        `json:"include_vector"`
	Filters       []filterDTO `json:"filters"`
}

type getWhereResponse struct {
	Documents []map[string]any `json:"documents"`
	Cursor    string           `json:"cursor"`
}

type centroidDTO struct {
	ID             string    `json:"_id"`
	CentroidVector []float64 `json:"centroid_vector"`
}

type centroidsInsertRequest struct {
	ClusterCenters []centroidDTO `json:"cluster_centers"`
	VectorFields   []string      `json:"vector_fields"`
	Alias          string        `json:"alias"`
}

type centroidsListRequest struct {
	VectorFields []string `json:"vector_fields"`
	Alias        string   `json:"alias"`
}

type centroidsListResponse struct {
	Results []centroidDTO `json:"results"`
}

type filterDTO struct {
	Field          string `json:"field"`
	FilterType     string `json:"filter_type"`
	Condition      string `json:"condition"`
	ConditionValue any    `json:"condition_value"`
}

type nearestRequest struct {
	VectorFields     []string    `json:"vector_fields"`
	Alias            string      `json:"alias"`
	ClusterIDs       []string    `json:"cluster_ids"`
	SelectFields     []string    `json:"select_fields"`
	Filters          []filterDTO `json:"filters"`
	PageSize         int         `json:"page_size"`
	Page             int         `json:"page"`
	SimilarityMetric string      `json:"similarity_metric"`
	Approx           int         `json:"approx"`
	SumFields        bool        `json:"sum_fields"`
	MinScore         float64     `json:"min_score"`
	IncludeVector    bool        `json:"include_vector"`
}

type nearestResponse struct {
	Results map[string][]map[string]any `json:"results"`
}

type aggregationDTO struct {
	GroupBy []request.GroupBy `json:"groupby"`
	Metrics []request.Metric  `json:"metrics"`
	Sort    []string          `json:"sort"`
}

type aggregateRequest struct {
	VectorFields     []string       `json:"vector_fields"`
	Alias            string         `json:"alias"`
	AggregationQuery aggregationDTO `json:"aggregation_query"`
	Filters          []filterDTO    `json:"filters"`
	PageSize         int            `json:"page_size"`
	Page             int            `json:"page"`
	Asc              bool           `json:"asc"`
	Flatten          *bool          `json:"flatten"`
}

type aggregateResponse struct {
	Results []map[string]any `json:"results"`
}

func filtersFromDTO(in []filterDTO) ([]filter.Condition, error) {
	out := make([]filter.Condition, 0, len(in))
	for _, f := range in {
		c, err := filter.New(f.Field, filter.Type(f.FilterType), f.Condition, f.ConditionValue)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := filter.Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func documentsFromDTO(in []map[string]any) []domdoc.Document {
	out := make([]domdoc.Document, len(in))
	for i, d := range in {
		out[i] = d
	}
	return out
}

func nearestParamsFromDTO(dataset string, req nearestRequest) (request.NearestParams, error) {
	conds, err := filtersFromDTO(req.Filters)
	if err != nil {
		return request.NearestParams{}, err
	}
	if len(req.VectorFields) != 1 {
		return request.NearestParams{}, fmt.Errorf("exactly one vector field is required, got %d", len(req.VectorFields))
	}
	return request.NearestParams{
		Target: request.Target{
			Dataset:     dataset,
			VectorField: req.VectorFields[0],
			Alias:       req.Alias,
		},
		ClusterIDs:       req.ClusterIDs,
		SelectFields:     req.SelectFields,
		Filters:          conds,
		PageSize:         req.PageSize,
		Page:             req.Page,
		SimilarityMetric: req.SimilarityMetric,
		Approx:           req.Approx,
		SumFields:        req.SumFields,
		MinScore:         req.MinScore,
		IncludeVector:    req.IncludeVector,
	}, nil
}

func aggregateParamsFromDTO(dataset string, req aggregateRequest) (request.AggregateParams, error) {
	conds, err := filtersFromDTO(req.Filters)
	if err != nil {
		return request.AggregateParams{}, err
	}
	return request.AggregateParams{
		Dataset:      dataset,
		VectorFields: req.VectorFields,
		Alias:        req.Alias,
		GroupBy:      req.AggregationQuery.GroupBy,
		Metrics:      req.AggregationQuery.Metrics,
		Sort:         req.AggregationQuery.Sort,
		Filters:      conds,
		PageSize:     req.PageSize,
		Page:         req.Page,
		Asc:          req.Asc,
		Flatten:      req.Flatten,
	}, nil
}
