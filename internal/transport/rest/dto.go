package rest

import (
	"encoding/json"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/clusterops/internal/domain/report"
	"github.com/kailas-cloud/clusterops/internal/domain/search/filter"
)

// Wire shapes of the hosted API.

type datasetListResponse struct {
	Datasets []string `json:"datasets"`
}

type createDatasetRequest struct {
	ID     string            `json:"id"`
	Schema map[string]string `json:"schema,omitempty"`
}

type schemaResponse map[string]string

type documentsRequest struct {
	Documents []map[string]any `json:"documents"`
}

type bulkResponse struct {
	Inserted        int               `json:"inserted"`
	FailedDocuments []json.RawMessage `json:"failed_documents"`
}

type getWhereRequest struct {
	SelectFields  []string    `json:"select_fields"`
	PageSize      int         `json:"page_size"`
	Cursor        string      `json:"cursor,omitempty"`
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

// nearestResponse maps cluster label to documents; each carries its score in ScoreField.
type nearestResponse struct {
	Results map[string][]map[string]any `json:"results"`
}

// ScoreField carries the centroid distance score of a returned document.
const ScoreField = "_score"

type aggregationDTO struct {
	GroupBy any `json:"groupby"`
	Metrics any `json:"metrics"`
	Sort    any `json:"sort"`
}

type aggregateRequest struct {
	VectorFields     []string       `json:"vector_fields"`
	Alias            string         `json:"alias"`
	AggregationQuery aggregationDTO `json:"aggregation_query"`
	Filters          []filterDTO    `json:"filters"`
	PageSize         int            `json:"page_size"`
	Page             int            `json:"page"`
	Asc              bool           `json:"asc"`
	Flatten          bool           `json:"flatten"`
}

type aggregateResponse struct {
	Results []map[string]any `json:"results"`
}

type metadataResponse struct {
	Results map[string]any `json:"results"`
}

type metadataRequest struct {
	Metadata map[string]any `json:"metadata"`
}

type reportListResponse struct {
	Results []report.Report `json:"results"`
}

type reportCreateRequest struct {
	Name   string         `json:"name"`
	Report map[string]any `json:"report"`
}

type reportCreateResponse struct {
	ID string `json:"_id"`
}

func filtersToDTO(conds []filter.Condition) []filterDTO {
	out := make([]filterDTO, len(conds))
	for i, c := range conds {
		out[i] = filterDTO{
			Field:          c.Field(),
			FilterType:     string(c.Type()),
			Condition:      c.Condition(),
			ConditionValue: c.Value(),
		}
	}
	return out
}

// datasetPath builds /datasets/{id}<suffix> with the id styled as a simple path parameter.
func datasetPath(id, suffix string) (string, error) {
	p, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return "", err
	}
	return "/datasets/" + p + suffix, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
