package crawler

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// DefaultLeaseTTL is the default lease lifetime (§4.9).
	DefaultLeaseTTL = 180 * time.Second
	// MinLeaseTTL is the floor the configured TTL is clamped to.
	MinLeaseTTL = 60 * time.Second
)

// leaseBody is the JSON document written into the lock file.
type leaseBody struct {
	OwnerID    string    `json:"owner_id"`
	AcquiredAt time.Time `json:"acquired_at"`
	TTLSeconds int       `json:"ttl_seconds"`
}

// ErrLeaseContended is returned by Acquire when another, still-live holder
// owns the lease.
var ErrLeaseContended = errors.New("crawler: lease held by another owner")

// Lease is a cross-process file-based lock under
// <tenant>/__scheduler_meta/locks/crawler.lock, created with O_CREAT|O_EXCL
// so only one process can hold it at a time, with the containing directory
// fsynced so the create is durable before Acquire returns.
type Lease struct {
	path     string
	ownerID  string
	ttl      time.Duration
	mu       sync.Mutex
	held     bool
	stopChan chan struct{}
}

// NewLease builds a Lease at <metaDir>/locks/crawler.lock. ttl is clamped to
// MinLeaseTTL if lower.
func NewLease(metaDir, ownerID string, ttl time.Duration) *Lease {
	if ttl < MinLeaseTTL {
		ttl = MinLeaseTTL
	}
	return &Lease{
		path:    filepath.Join(metaDir, "locks", "crawler.lock"),
		ownerID: ownerID,
		ttl:     ttl,
	}
}

// Acquire attempts to take the lease. If an existing lease file is present
// and not expired, it returns ErrLeaseContended without blocking. An expired
// lease is treated as abandoned and overwritten.
func (l *Lease) Acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("crawler: create lock dir: %w", err)
	}

	if expired, err := l.currentIsExpired(); err != nil {
		return err
	} else if !expired {
		return ErrLeaseContended
	} else {
		os.Remove(l.path)
	}

	if err := l.writeLeaseFile(time.Now()); err != nil {
		if os.IsExist(err) {
			return ErrLeaseContended
		}
		return err
	}
	if err := fsyncDir(filepath.Dir(l.path)); err != nil {
		return err
	}

	l.held = true
	l.stopChan = make(chan struct{})
	go l.refreshLoop(l.stopChan)
	return nil
}

// currentIsExpired reports whether no lease file exists, or one exists but
// has outlived its TTL.
func (l *Lease) currentIsExpired() (bool, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("crawler: read lease file: %w", err)
	}
	var body leaseBody
	if err := json.Unmarshal(data, &body); err != nil {
		// A corrupt lease file is treated as expired: better to risk a
		// double-crawl than to wedge the tenant forever on a garbled file.
		return true, nil
	}
	deadline := body.AcquiredAt.Add(time.Duration(body.TTLSeconds) * time.Second)
	return time.Now().After(deadline), nil
}

func (l *Lease) writeLeaseFile(acquiredAt time.Time) error {
	body := leaseBody{OwnerID: l.ownerID, AcquiredAt: acquiredAt, TTLSeconds: int(l.ttl / time.Second)}
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// refreshLoop rewrites the lease file at ttl/3 intervals so a live holder's
// lease never expires out from under it.
func (l *Lease) refreshLoop(stop chan struct{}) {
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			if l.held {
				if err := os.WriteFile(l.path, mustMarshalLease(l.ownerID, time.Now(), l.ttl), 0o644); err == nil {
					fsyncDir(filepath.Dir(l.path))
				}
			}
			l.mu.Unlock()
		}
	}
}

func mustMarshalLease(ownerID string, acquiredAt time.Time, ttl time.Duration) []byte {
	data, _ := json.Marshal(leaseBody{OwnerID: ownerID, AcquiredAt: acquiredAt, TTLSeconds: int(ttl / time.Second)})
	return data
}

// Release removes the lease file and stops the refresh loop. A process that
// crashes instead of calling Release simply lets the lease expire at its
// TTL, which is the documented manual-recovery path.
func (l *Lease) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		return nil
	}
	close(l.stopChan)
	l.held = false
	return os.Remove(l.path)
}

func fsyncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
