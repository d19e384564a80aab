// Package httpapi exposes the dispatcher over HTTP: a health check, the
// tool-surface routes (list/find/describe/search/fetch/browse), and, when
// the configured operation mode is online, the admin routes that trigger a
// sync or an audit. Grounded on the
// teacher's internal/server package (chi router, middleware stack,
// respondJSON/respondError helpers) wired to this module's dispatcher
// instead of a single-tenant search engine.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/arcdocs/docsearch/internal/config"
	"github.com/arcdocs/docsearch/internal/dispatcher"
)

// Server is the HTTP API in front of one Dispatcher.
type Server struct {
	dispatcher *dispatcher.Dispatcher
	infra      config.Infrastructure
	logger     *zap.Logger
	server     *http.Server
}

// New builds a Server. It does not start listening; call Start.
func New(d *dispatcher.Dispatcher, infra config.Infrastructure, logger *zap.Logger) *Server {
	return &Server{dispatcher: d, infra: infra, logger: logger}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	timeout := time.Duration(s.infra.HTTPTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", s.handleHealth)

	r.Get("/tools/list_tenants", s.handleListTenants)
	r.Get("/tools/find_tenant", s.handleFindTenant)
	r.Get("/tools/describe_tenant/{codename}", s.handleDescribeTenant)
	r.Post("/tools/root_search", s.handleRootSearch)
	r.Post("/tools/root_fetch", s.handleRootFetch)
	r.Get("/tools/browse_tenant/{codename}", s.handleBrowseTenant)

	r.Group(func(admin chi.Router) {
		admin.Use(s.requireOnline)
		admin.Post("/admin/tenants/{codename}/sync", s.handleTriggerSync)
		admin.Post("/admin/tenants/{codename}/audit", s.handleTriggerAudit)
	})

	return r
}

// requireOnline rejects mutating admin routes with 503 when the
// infrastructure operation_mode is offline, per the external interfaces
// contract; read endpoints and tool routes stay available in both modes.
func (s *Server) requireOnline(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.infra.OperationMode == config.ModeOffline {
			s.respondError(w, http.StatusServiceUnavailable, "operation_mode is offline")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the routed http.Handler, for tests that want to drive the
// server with httptest without binding a real socket.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// Start builds the router and blocks serving HTTP until Stop shuts it down.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.infra.Host, s.infra.Port)
	s.server = &http.Server{Addr: addr, Handler: s.routes()}
	s.logger.Info("starting http server", zap.String("addr", addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the HTTP server down within ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
