package dispatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/arcdocs/docsearch/internal/apierr"
	"github.com/arcdocs/docsearch/internal/audit"
	"github.com/arcdocs/docsearch/internal/config"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func testDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	root := t.TempDir()
	writeDoc(t, root, "intro.md", "# Getting Started\n\ninstall the client and run the server daemon")

	cfg := &config.Config{
		Infrastructure: config.Infrastructure{OperationMode: config.ModeOnline},
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

	d, err := Build(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return d
}

func TestListTenantsReturnsRegisteredTenants(t *testing.T) {
	d := testDispatcher(t)
	tenants := d.ListTenants()
	if len(tenants) != 1 || tenants[0].Codename != "docs" {
		t.Fatalf("expected one tenant 'docs', got %+v", tenants)
	}
}

func TestFindTenantMatchesTypo(t *testing.T) {
	d := testDispatcher(t)
	matches := d.FindTenant("docz")
	if len(matches) != 1 || matches[0].Codename != "docs" {
		t.Fatalf("expected fuzzy match on 'docs', got %+v", matches)
	}
}

func TestDescribeUnknownTenantIsTenantNotFound(t *testing.T) {
	d := testDispatcher(t)
	_, err := d.DescribeTenant("missing")
	if apierr.KindOf(err) != apierr.TenantNotFound {
		t.Fatalf("expected TenantNotFound, got %v", err)
	}
}

func TestRootSearchRejectsEmptyQuery(t *testing.T) {
	d := testDispatcher(t)
	_, err := d.RootSearch(context.Background(), "", "docs", "", 10)
	if apierr.KindOf(err) != apierr.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestRootSearchZeroSizeReturnsEmptyWithoutError(t *testing.T) {
	d := testDispatcher(t)
	resp, err := d.RootSearch(context.Background(), "", "docs", "server", 0)
	if err != nil {
		t.Fatalf("RootSearch: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no results for size=0, got %d", len(resp.Results))
	}
}

func TestRootSearchFindsIndexedDocument(t *testing.T) {
	d := testDispatcher(t)
	resp, err := d.RootSearch(context.Background(), "", "docs", "server", 10)
	if err != nil {
		t.Fatalf("RootSearch: %v", err)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected at least one result for 'server'")
	}
}

func TestRootFetchUnknownTenantIsTenantNotFound(t *testing.T) {
	d := testDispatcher(t)
	_, err := d.RootFetch("", "missing", "intro.md", "full")
	if apierr.KindOf(err) != apierr.TenantNotFound {
		t.Fatalf("expected TenantNotFound, got %v", err)
	}
}

func TestBrowseTenantListsIndexedFiles(t *testing.T) {
	d := testDispatcher(t)
	tree, err := d.BrowseTenant("docs", "", 5)
	if err != nil {
		t.Fatalf("BrowseTenant: %v", err)
	}
	if len(tree.Entries) != 1 || tree.Entries[0].Name != "intro.md" {
		t.Fatalf("expected a single intro.md entry, got %+v", tree.Entries)
	}
}

func TestBrowseTenantUnknownTenantIsTenantNotFound(t *testing.T) {
	d := testDispatcher(t)
	_, err := d.BrowseTenant("missing", "", 5)
	if apierr.KindOf(err) != apierr.TenantNotFound {
		t.Fatalf("expected TenantNotFound, got %v", err)
	}
}

func TestTriggerAuditReportsOKRightAfterSync(t *testing.T) {
	d := testDispatcher(t)
	report, err := d.TriggerAudit("docs")
	if err != nil {
		t.Fatalf("TriggerAudit: %v", err)
	}
	if report.Status != audit.StatusOK {
		t.Fatalf("expected StatusOK right after sync, got %v", report.Status)
	}
}

func TestTriggerAuditUnknownTenantIsTenantNotFound(t *testing.T) {
	d := testDispatcher(t)
	_, err := d.TriggerAudit("missing")
	if apierr.KindOf(err) != apierr.TenantNotFound {
		t.Fatalf("expected TenantNotFound, got %v", err)
	}
}
