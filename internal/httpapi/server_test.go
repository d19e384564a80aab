package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/arcdocs/docsearch/internal/config"
	"github.com/arcdocs/docsearch/internal/dispatcher"
	"github.com/arcdocs/docsearch/internal/tenant"
)

func testServer(t *testing.T, mode config.OperationMode) *Server {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "intro.md"), []byte("# Getting Started\n\ninstall the client and run the server daemon"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	infra := config.Infrastructure{OperationMode: mode}
	cfg := &config.Config{
		Infrastructure: infra,
		Tenants: []config.TenantConfig{
			{
				Codename:    "docs",
				DocsName:    "Example Docs",
				Description: "example tenant",
				SourceType:  config.SourceFilesystem,
				DocsRootDir: root,
				Search:      config.SearchOverride{AnalyzerProfile: "default"},
			},
		},
	}

	d, err := dispatcher.Build(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	return New(d, infra, zap.NewNop())
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t, config.ModeOnline)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestListTenantsEndpoint(t *testing.T) {
	s := testServer(t, config.ModeOnline)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tools/list_tenants", nil)
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string][]dispatcher.TenantSummary
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body["tenants"]) != 1 || body["tenants"][0].Codename != "docs" {
		t.Fatalf("unexpected tenants: %+v", body)
	}
}

func TestDescribeUnknownTenantReturns404(t *testing.T) {
	s := testServer(t, config.ModeOnline)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tools/describe_tenant/missing", nil)
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRootSearchEndpoint(t *testing.T) {
	s := testServer(t, config.ModeOnline)
	payload, _ := json.Marshal(map[string]any{"tenant_codename": "docs", "query": "server"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tools/root_search", bytes.NewReader(payload))
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp dispatcher.SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected at least one search result")
	}
}

func TestRootSearchEmptyQueryReturns400(t *testing.T) {
	s := testServer(t, config.ModeOnline)
	payload, _ := json.Marshal(map[string]any{"tenant_codename": "docs", "query": ""})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tools/root_search", bytes.NewReader(payload))
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRootFetchEndpoint(t *testing.T) {
	s := testServer(t, config.ModeOnline)
	payload, _ := json.Marshal(map[string]any{"tenant_codename": "docs", "uri": "intro.md"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tools/root_fetch", bytes.NewReader(payload))
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp dispatcher.FetchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Title != "Getting Started" {
		t.Fatalf("expected title %q, got %q", "Getting Started", resp.Title)
	}
}

func TestBrowseTenantEndpoint(t *testing.T) {
	s := testServer(t, config.ModeOnline)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tools/browse_tenant/docs", nil)
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var tree tenant.DirectoryTree
	if err := json.NewDecoder(rec.Body).Decode(&tree); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tree.Entries) != 1 || tree.Entries[0].Name != "intro.md" {
		t.Fatalf("expected a single intro.md entry, got %+v", tree.Entries)
	}
}

func TestAdminSyncRejectedWhenOffline(t *testing.T) {
	s := testServer(t, config.ModeOffline)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/tenants/docs/sync", nil)
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestAdminAuditSucceedsWhenOnline(t *testing.T) {
	s := testServer(t, config.ModeOnline)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/tenants/docs/audit", nil)
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
