// Package audit checks whether a tenant's published segment still matches
// its source without writing anything: it streams the same DocumentSource
// the indexer would, recomputes the content fingerprint with the identical
// streaming hasher, and compares against the current manifest.
package audit

import (
	"fmt"
	"time"

	"github.com/arcdocs/docsearch/internal/fingerprint"
	"github.com/arcdocs/docsearch/internal/indexer"
	"github.com/arcdocs/docsearch/internal/segment"
)

// Status classifies the outcome of one audit pass.
type Status string

const (
	// StatusOK means the manifest's fingerprint matches what the source
	// would produce today.
	StatusOK Status = "ok"
	// StatusStale means the source has changed since the last publish.
	StatusStale Status = "stale"
	// StatusMissing means no manifest has ever been published.
	StatusMissing Status = "missing"
)

// Report is the result of one audit pass. A dry run (the only mode Run
// itself performs) never opens or writes a segment file; Stale/Missing just
// tell the caller a rebuild is warranted, they don't trigger one.
type Report struct {
	Status               Status
	ExpectedFingerprint  string
	ManifestFingerprint  string
	DocCount             int
}

// Run streams src once, computing the fingerprint the indexer would have
// produced for the same documents, and compares it to the tenant's current
// manifest at segDir. Callers that want an automatic rebuild on drift
// should follow a Stale/Missing report with indexer.Build over a fresh
// DocumentSource (src here is already exhausted).
func Run(src indexer.DocumentSource, segDir string) (Report, error) {
	defer src.Close()

	hasher := fingerprint.New()
	docCount := 0
	for {
		doc, ok, err := src.Next()
		if err != nil {
			return Report{}, fmt.Errorf("audit: read document: %w", err)
		}
		if !ok {
			break
		}
		hasher.Add(doc.Key, []byte(doc.Body))
		docCount++
	}
	expected := hasher.Hex()

	manifest, err := segment.ReadManifest(segDir)
	if err == segment.ErrIndexMissing {
		return Report{Status: StatusMissing, ExpectedFingerprint: expected, DocCount: docCount}, nil
	}
	if err != nil {
		return Report{}, fmt.Errorf("audit: read manifest: %w", err)
	}

	report := Report{
		ExpectedFingerprint: expected,
		ManifestFingerprint: manifest.Fingerprint,
		DocCount:            docCount,
	}
	if manifest.Fingerprint == expected {
		report.Status = StatusOK
	} else {
		report.Status = StatusStale
	}
	return report, nil
}

// RunWithTimeout is Run bounded by a per-tenant deadline, used by the
// dispatcher's TriggerAudit.
func RunWithTimeout(src indexer.DocumentSource, segDir string, timeout time.Duration) (Report, error) {
	done := make(chan struct{})
	var report Report
	var runErr error
	go func() {
		report, runErr = Run(src, segDir)
		close(done)
	}()

	select {
	case <-done:
		return report, runErr
	case <-time.After(timeout):
		return Report{}, fmt.Errorf("audit: timed out after %s", timeout)
	}
}
