package crawler

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireThenReleaseAllowsReacquisition(t *testing.T) {
	dir := t.TempDir()
	l1 := NewLease(dir, "owner-1", time.Minute)
	if err := l1.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := l1.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	l2 := NewLease(dir, "owner-2", time.Minute)
	if err := l2.Acquire(); err != nil {
		t.Fatalf("second Acquire after release: %v", err)
	}
	l2.Release()
}

func TestAcquireContendedWhileLeaseLive(t *testing.T) {
	dir := t.TempDir()
	l1 := NewLease(dir, "owner-1", time.Minute)
	if err := l1.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer l1.Release()

	l2 := NewLease(dir, "owner-2", time.Minute)
	if err := l2.Acquire(); err != ErrLeaseContended {
		t.Fatalf("expected ErrLeaseContended, got %v", err)
	}
}

func TestAcquireAllowedAfterExpiry(t *testing.T) {
	dir := t.TempDir()
	l1 := NewLease(dir, "owner-1", MinLeaseTTL)
	if err := os.MkdirAll(filepath.Dir(l1.path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := l1.writeLeaseFile(time.Now().Add(-2 * MinLeaseTTL)); err != nil {
		t.Fatalf("seed expired lease: %v", err)
	}

	l2 := NewLease(dir, "owner-2", time.Minute)
	if err := l2.Acquire(); err != nil {
		t.Fatalf("expected expired lease to be acquirable, got %v", err)
	}
	l2.Release()
}

func TestLeaseFileLocationUnderLocksSubdir(t *testing.T) {
	dir := t.TempDir()
	l := NewLease(dir, "owner-1", time.Minute)
	want := filepath.Join(dir, "locks", "crawler.lock")
	if l.path != want {
		t.Errorf("expected lease path %q, got %q", want, l.path)
	}
}
