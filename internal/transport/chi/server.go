// Package chi serves an in-memory emulator of the hosted vector database API.
// It speaks the same wire format as internal/transport/rest and is meant for
// local development and end-to-end tests.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/clusterops/internal/domain"
	domcluster "github.com/kailas-cloud/clusterops/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
	"github.com/kailas-cloud/clusterops/internal/domain/search/direction"
	"github.com/kailas-cloud/clusterops/internal/domain/search/filter"
	"github.com/kailas-cloud/clusterops/internal/domain/search/request"
	"github.com/kailas-cloud/clusterops/internal/repository/memory"
)

// defaultGetWherePageSize applies when get_where omits page_size.
const defaultGetWherePageSize = 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server implements the emulated hosted API on top of a memory.Store.
type Server struct {
	store         *memory.Store
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an emulator server.
func NewServer(store *memory.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:  store,
		logger: logger,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
			sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
			sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeBadRequest),
			sentinelHandler(domain.ErrMissingTarget, http.StatusBadRequest, codeBadRequest),
			sentinelHandler(domain.ErrShapeMismatch, http.StatusBadRequest, codeBadRequest),
		},
	}
}

// Routes mounts the API endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.Health)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/datasets/list", s.ListDatasets)
	r.Post("/datasets/create", s.CreateDataset)
	r.Route("/datasets/{id}", func(r chi.Router) {
		r.Post("/delete", s.DeleteDataset)
		r.Get("/schema", s.Schema)
		r.Get("/metadata", s.Metadata)
		r.Post("/metadata", s.SetMetadata)
		r.Post("/documents/bulk_insert", s.BulkInsert)
		r.Post("/documents/bulk_update", s.BulkUpdate)
		r.Post("/documents/get_where", s.GetWhere)
		r.Post("/cluster/centroids/insert", s.InsertCentroids)
		r.Post("/cluster/centroids/list", s.ListCentroids)
		r.Post("/cluster/centroids/list_closest_to_center", s.nearestHandler(direction.Closest))
		r.Post("/cluster/centroids/list_furthest_from_center", s.nearestHandler(direction.Furthest))
		r.Post("/cluster/aggregate", s.Aggregate)
	})

	r.Get("/reports/clusters/list", s.ListReports)
	r.Post("/reports/clusters/create", s.CreateReport)
	r.Post("/reports/clusters/{id}/delete", s.DeleteReport)
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ListDatasets handles GET /datasets/list.
func (s *Server) ListDatasets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"datasets": s.store.ListDatasets()})
}

// CreateDataset handles POST /datasets/create.
func (s *Server) CreateDataset(w http.ResponseWriter, r *http.Request) {
	var req createDatasetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.store.CreateDataset(req.ID, req.Schema); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": req.ID})
}

// DeleteDataset handles POST /datasets/{id}/delete.
func (s *Server) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteDataset(id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// Schema handles GET /datasets/{id}/schema.
func (s *Server) Schema(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	schema, err := s.store.Schema(id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

// BulkInsert handles POST /datasets/{id}/documents/bulk_insert.
func (s *Server) BulkInsert(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	var req documentsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	inserted, failed := s.store.Insert(id, documentsFromDTO(req.Documents))
	writeJSON(w, http.StatusOK, bulkResponse{Inserted: inserted, FailedDocuments: nonNil(failed)})
}

// BulkUpdate handles POST /datasets/{id}/documents/bulk_update.
func (s *Server) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	var req documentsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	updated, failed, err := s.store.Update(id, documentsFromDTO(req.Documents))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkResponse{Inserted: updated, FailedDocuments: nonNil(failed)})
}

// GetWhere handles POST /datasets/{id}/documents/get_where.
func (s *Server) GetWhere(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	var req getWhereRequest
	if !decodeBody(w, r, &req) {
		return
	}
	conds, err := filtersFromDTO(req.Filters)
	if err != nil {
		s.handleDomainError(w, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err))
		return
	}
	size := req.PageSize
	if size <= 0 {
		size = defaultGetWherePageSize
	}

	match := func(d domdoc.Document) bool { return filter.MatchAll(conds, d) }
	page, next, err := s.store.Page(id, req.Cursor, size, match)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	docs := make([]map[string]any, len(page))
	for i, d := range page {
		docs[i] = project(d, req.SelectFields, req.IncludeVector)
	}
	writeJSON(w, http.StatusOK, getWhereResponse{Documents: docs, Cursor: next})
}

// InsertCentroids handles POST /datasets/{id}/cluster/centroids/insert.
func (s *Server) InsertCentroids(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	var req centroidsInsertRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.VectorFields) == 0 || req.Alias == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "vector_fields and alias are required")
		return
	}
	centroids := make([]domcluster.Centroid, len(req.ClusterCenters))
	for i, c := range req.ClusterCenters {
		centroids[i] = domcluster.Centroid{Label: c.ID, Vector: c.CentroidVector}
	}
	for _, vf := range req.VectorFields {
		if err := s.store.PutCentroids(id, vf, req.Alias, centroids); err != nil {
			s.handleDomainError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"inserted": len(centroids)})
}

// ListCentroids handles POST /datasets/{id}/cluster/centroids/list.
func (s *Server) ListCentroids(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	var req centroidsListRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.VectorFields) != 1 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "exactly one vector field is required")
		return
	}
	cs, err := s.store.Centroids(id, req.VectorFields[0], req.Alias)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	resp := centroidsListResponse{Results: make([]centroidDTO, len(cs))}
	for i, c := range cs {
		resp.Results[i] = centroidDTO{ID: c.Label, CentroidVector: c.Vector}
	}
	writeJSON(w, http.StatusOK, resp)
}

// nearestHandler serves list_closest_to_center and list_furthest_from_center.
func (s *Server) nearestHandler(dir direction.Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := datasetID(w, r)
		if !ok {
			return
		}
		var req nearestRequest
		if !decodeBody(w, r, &req) {
			return
		}
		params, err := nearestParamsFromDTO(id, req)
		if err != nil {
			s.handleDomainError(w, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err))
			return
		}
		q, err := request.NewNearest(dir, params)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		t := q.Target()
		centroids, err := s.store.Centroids(id, t.VectorField, t.Alias)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		docs, err := s.store.Documents(id)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nearestResponse{Results: rankNearest(docs, centroids, q)})
	}
}

// Aggregate handles POST /datasets/{id}/cluster/aggregate.
func (s *Server) Aggregate(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	var req aggregateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	params, err := aggregateParamsFromDTO(id, req)
	if err != nil {
		s.handleDomainError(w, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err))
		return
	}
	q, err := request.NewAggregate(params)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	docs, err := s.store.Documents(id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, aggregateResponse{Results: aggregate(docs, q)})
}

// datasetID binds the {id} path parameter. Writes a 400 and returns false on failure.
func datasetID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithLocation("simple", false, "id",
		runtime.ParamLocationPath, chi.URLParam(r, "id"), &id)
	if err != nil || id == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid dataset id")
		return "", false
	}
	return id, true
}

// decodeBody decodes a JSON body keeping numbers as json.Number.
// Writes a 400 and returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Debug("request rejected", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
