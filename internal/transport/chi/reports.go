package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Metadata handles GET /datasets/{id}/metadata.
func (s *Server) Metadata(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	md, err := s.store.Metadata(id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": md})
}

// SetMetadata handles POST /datasets/{id}/metadata.
func (s *Server) SetMetadata(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	var req metadataRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.store.SetMetadata(id, req.Metadata); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// ListReports handles GET /reports/clusters/list.
func (s *Server) ListReports(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"results": s.store.ListReports()})
}

// CreateReport handles POST /reports/clusters/create.
func (s *Server) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req reportCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := s.store.PutReport(req.Name, req.Report)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"_id": id})
}

// DeleteReport handles POST /reports/clusters/{id}/delete.
func (s *Server) DeleteReport(w http.ResponseWriter, r *http.Request) {
	var id string
	err := runtime.BindStyledParameterWithLocation("simple", false, "id",
		runtime.ParamLocationPath, chi.URLParam(r, "id"), &id)
	if err != nil || id == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid report id")
		return
	}
	if err := s.store.DeleteReport(id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"_id": id})
}
