package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arcdocs/docsearch/internal/apierr"
	"github.com/arcdocs/docsearch/internal/tenant"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{"tenants": s.dispatcher.ListTenants()})
}

func (s *Server) handleFindTenant(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	s.respondJSON(w, http.StatusOK, map[string]any{"tenants": s.dispatcher.FindTenant(query)})
}

func (s *Server) handleDescribeTenant(w http.ResponseWriter, r *http.Request) {
	codename := chi.URLParam(r, "codename")
	desc, err := s.dispatcher.DescribeTenant(codename)
	if err != nil {
		s.respondAPIError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, desc)
}

type rootSearchRequest struct {
	ConnectionID   string `json:"connection_id,omitempty"`
	TenantCodename string `json:"tenant_codename"`
	Query          string `json:"query"`
	Size           *int   `json:"size,omitempty"`
}

func (s *Server) handleRootSearch(w http.ResponseWriter, r *http.Request) {
	var req rootSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	size := 10
	if req.Size != nil {
		size = *req.Size
	}

	resp, err := s.dispatcher.RootSearch(r.Context(), s.connectionID(r, req.ConnectionID), req.TenantCodename, req.Query, size)
	if err != nil {
		s.respondAPIError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type rootFetchRequest struct {
	ConnectionID   string `json:"connection_id,omitempty"`
	TenantCodename string `json:"tenant_codename"`
	URI            string `json:"uri"`
	Mode           string `json:"mode,omitempty"`
}

func (s *Server) handleRootFetch(w http.ResponseWriter, r *http.Request) {
	var req rootFetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mode := tenant.FetchModeFull
	if req.Mode != "" {
		mode = tenant.FetchMode(req.Mode)
	}

	resp, err := s.dispatcher.RootFetch(s.connectionID(r, req.ConnectionID), req.TenantCodename, req.URI, mode)
	if err != nil {
		s.respondAPIError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// connectionID resolves the caller's connection identity: an explicit
// connection_id in the request body wins, falling back to the
// X-Connection-Id header. Neither present means no surrounding-fetch state
// is tracked for this call.
func (s *Server) connectionID(r *http.Request, bodyValue string) string {
	if bodyValue != "" {
		return bodyValue
	}
	return r.Header.Get("X-Connection-Id")
}

func (s *Server) handleBrowseTenant(w http.ResponseWriter, r *http.Request) {
	codename := chi.URLParam(r, "codename")
	path := r.URL.Query().Get("path")
	depth := 5
	if v := r.URL.Query().Get("depth"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			depth = parsed
		}
	}

	tree, err := s.dispatcher.BrowseTenant(codename, path, depth)
	if err != nil {
		s.respondAPIError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tree)
}

func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	codename := chi.URLParam(r, "codename")
	forceCrawler := r.URL.Query().Get("force_crawler") == "true"
	forceFull := r.URL.Query().Get("force_full") == "true"

	result, err := s.dispatcher.TriggerSync(r.Context(), codename, forceCrawler, forceFull)
	if err != nil {
		s.respondAPIError(w, err)
		return
	}
	s.respondJSON(w, http.StatusAccepted, result)
}

func (s *Server) handleTriggerAudit(w http.ResponseWriter, r *http.Request) {
	codename := chi.URLParam(r, "codename")
	report, err := s.dispatcher.TriggerAudit(codename)
	if err != nil {
		s.respondAPIError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondAPIError maps an apierr.Kind to its HTTP status and renders the
// tool surface's {error} channel; a non-empty error suppresses the result
// payload per the dispatcher's input validation contract.
func (s *Server) respondAPIError(w http.ResponseWriter, err error) {
	apiErr, ok := apierr.As(err)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, statusForKind(apiErr.Kind), map[string]any{
		"error":   apiErr.Message,
		"kind":    string(apiErr.Kind),
		"details": apiErr.Details,
	})
}

func statusForKind(kind apierr.Kind) int {
	switch kind {
	case apierr.InvalidArgument:
		return http.StatusBadRequest
	case apierr.TenantNotFound, apierr.NotFound:
		return http.StatusNotFound
	case apierr.TenantNotReady:
		return http.StatusServiceUnavailable
	case apierr.NotSupported:
		return http.StatusNotImplemented
	case apierr.IndexMissing, apierr.IndexCorrupt:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
