package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMinimalFilesystemTenant(t *testing.T) {
	path := writeConfig(t, `
infrastructure:
  host: "127.0.0.1"
  port: 9090
tenants:
  - codename: docs
    docs_name: Docs
    source_type: filesystem
    docs_root_dir: /var/docs
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Infrastructure.OperationMode != ModeOnline {
		t.Errorf("expected default operation_mode online, got %v", cfg.Infrastructure.OperationMode)
	}
	if cfg.Infrastructure.CrawlerMinConcurrency != 5 {
		t.Errorf("expected default crawler_min_concurrency 5, got %d", cfg.Infrastructure.CrawlerMinConcurrency)
	}
	if len(cfg.Tenants) != 1 {
		t.Fatalf("expected 1 tenant, got %d", len(cfg.Tenants))
	}
	if cfg.Tenants[0].Search.Ranking.BM25K1 != 1.2 {
		t.Errorf("expected default bm25_k1 1.2, got %v", cfg.Tenants[0].Search.Ranking.BM25K1)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeConfig(t, `
infrastructure:
  host: "127.0.0.1"
  bogus_field: true
tenants: []
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadRejectsDuplicateCodename(t *testing.T) {
	path := writeConfig(t, `
infrastructure:
  host: "127.0.0.1"
tenants:
  - codename: docs
    docs_name: Docs
    source_type: filesystem
    docs_root_dir: /a
  - codename: docs
    docs_name: Docs2
    source_type: filesystem
    docs_root_dir: /b
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for duplicate codename")
	}
}

func TestLoadRejectsLowCrawlerLockTTL(t *testing.T) {
	path := writeConfig(t, `
infrastructure:
  crawler_lock_ttl_seconds: 10
tenants: []
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for crawler_lock_ttl_seconds below 60")
	}
}

func TestLoadRejectsMissingGitRepoURL(t *testing.T) {
	path := writeConfig(t, `
infrastructure:
  host: "127.0.0.1"
tenants:
  - codename: repo
    docs_name: Repo
    source_type: git
    docs_root_dir: /repo
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing git repo_url")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
