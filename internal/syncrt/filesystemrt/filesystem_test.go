package filesystemrt

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arcdocs/docsearch/internal/docmodel"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestInitializeIndexesExistingFiles(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "intro.md", "# Getting Started\n\ninstall the client and run the server\n")
	writeDoc(t, root, "config.md", "# Configuration\n\nconfigure the server with a config file\n")

	segDir := t.TempDir()
	var published string
	rt := New(root, docmodel.DefaultSchema("default"), segDir, func(path, fp string) error {
		published = fp
		return nil
	}, 0, nil)

	if err := rt.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if published == "" {
		t.Fatal("expected a segment to be published")
	}
	stats := rt.Stats()
	if stats.DocumentsCount != 2 {
		t.Errorf("expected 2 documents, got %d", stats.DocumentsCount)
	}
	if stats.LastError != "" {
		t.Errorf("expected no error, got %q", stats.LastError)
	}
	rt.Stop(context.Background())
}

func TestTriggerRespectsFreshnessWindow(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.md", "# A\n\nalpha\n")

	segDir := t.TempDir()
	calls := 0
	rt := New(root, docmodel.DefaultSchema("default"), segDir, func(path, fp string) error {
		calls++
		return nil
	}, time.Hour, nil)

	if err := rt.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	firstCalls := calls

	result, err := rt.Trigger(context.Background(), false, false)
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if result.Status != "accepted" {
		t.Errorf("expected accepted status, got %v", result.Status)
	}
	time.Sleep(50 * time.Millisecond)
	if calls != firstCalls {
		t.Errorf("expected no additional sync within freshness window, calls went from %d to %d", firstCalls, calls)
	}
	rt.Stop(context.Background())
}

func TestDirectorySourceDeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "b.md", "# B\n\nbravo\n")
	writeDoc(t, root, "a.md", "# A\n\nalpha\n")

	src, err := NewDirectorySource(root)
	if err != nil {
		t.Fatalf("NewDirectorySource: %v", err)
	}
	var keys []string
	for {
		doc, ok, err := src.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		keys = append(keys, doc.Key)
	}
	if len(keys) != 2 || filepath.Base(keys[0]) != "a.md" || filepath.Base(keys[1]) != "b.md" {
		t.Errorf("expected lexically sorted [a.md, b.md], got %v", keys)
	}
}

func TestParseMarkdownExtractsTitleHeadingsAndCode(t *testing.T) {
	doc := parseMarkdown("# Title Here\n\nSome text.\n\n## Sub\n\n```go\nfmt.Println(\"hi\")\n```\n")
	if doc.Title != "Title Here" {
		t.Errorf("expected title %q, got %q", "Title Here", doc.Title)
	}
	if len(doc.HeadingsH2) != 1 || doc.HeadingsH2[0] != "Sub" {
		t.Errorf("expected one H2 'Sub', got %v", doc.HeadingsH2)
	}
	if len(doc.CodeBlocks) != 1 {
		t.Fatalf("expected one code block, got %d", len(doc.CodeBlocks))
	}
}
