package tenant

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/arcdocs/docsearch/internal/analyzer"
	"github.com/arcdocs/docsearch/internal/apierr"
	"github.com/arcdocs/docsearch/internal/scorer"
	"github.com/arcdocs/docsearch/internal/segment"
)

// Health is a snapshot of a tenant's current readiness, read without taking
// any lock.
type Health struct {
	Codename         string
	Ready            bool
	Fingerprint      string
	DocCount         int64
	LastSyncAt       time.Time
	LastSyncError    string
}

// FetchMode selects how much of a document Fetch returns.
type FetchMode string

const (
	FetchModeFull        FetchMode = "full"
	FetchModeSurrounding FetchMode = "surrounding"
)

// SearchHit is one result returned from Runtime.Search, carrying both the
// score and extracted snippet fragments ready to render.
type SearchHit struct {
	Key       string
	Title     string
	Score     float64
	Fragments []scorer.Fragment
}

// Runtime is the live, queryable state of one tenant. Its segment handle is
// held behind an atomic.Pointer so a background sync can publish a new
// generation and swap it in without blocking or racing with in-flight
// queries: readers that grabbed the old *segment.Reader before the swap
// keep using it until they return, and Close it only once holds it.
type Runtime struct {
	Identity Identity
	Scoring  ScoringConfig
	Profile  analyzer.Profile

	segDir string
	logger *zap.Logger

	reader atomic.Pointer[segment.Reader]

	lastSyncAt    atomic.Value // time.Time
	lastSyncError atomic.Value // string

	// connections remembers the query terms of the most recent search on
	// each connection (keyed by caller-supplied connection ID), so
	// fetch(mode=surrounding) can center its window on the most recent
	// query on that connection instead of requiring a client-supplied
	// byte offset.
	connections sync.Map // string -> []string
}

// New builds a Runtime for one tenant. It does not open a segment: the
// tenant starts in the TenantNotReady state until a sync publishes one and
// calls SwapSegment, or an existing on-disk segment is opened via
// OpenExisting.
func New(identity Identity, scoring ScoringConfig, segDir string, logger *zap.Logger) (*Runtime, error) {
	profile, err := analyzer.Get(scoring.AnalyzerProfile)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: %w", identity.Codename, err)
	}
	rt := &Runtime{
		Identity: identity,
		Scoring:  scoring,
		Profile:  profile,
		segDir:   segDir,
		logger:   logger,
	}
	rt.lastSyncAt.Store(time.Time{})
	rt.lastSyncError.Store("")
	return rt, nil
}

// OpenExisting opens whatever segment the manifest in segDir currently
// names, if any, so a restarted process can serve queries immediately
// instead of waiting for the next sync cycle.
func (rt *Runtime) OpenExisting() error {
	manifest, err := segment.ReadManifest(rt.segDir)
	if err != nil {
		if err == segment.ErrIndexMissing {
			return nil
		}
		return err
	}
	r, err := segment.Open(segment.SegmentPath(rt.segDir, manifest.Fingerprint), manifest.Fingerprint)
	if err != nil {
		return err
	}
	rt.swap(r)
	return nil
}

// SwapSegment installs a newly published segment as the tenant's current
// generation, closing the previous one. Called by a sync runtime right
// after indexer.Build publishes a manifest.
func (rt *Runtime) SwapSegment(path, fingerprint string) error {
	r, err := segment.Open(path, fingerprint)
	if err != nil {
		return err
	}
	rt.swap(r)
	return nil
}

func (rt *Runtime) swap(r *segment.Reader) {
	old := rt.reader.Swap(r)
	if old != nil {
		old.Close()
	}
}

// RecordSync records the outcome of a sync/audit cycle for Health reporting.
func (rt *Runtime) RecordSync(at time.Time, err error) {
	rt.lastSyncAt.Store(at)
	if err != nil {
		rt.lastSyncError.Store(err.Error())
	} else {
		rt.lastSyncError.Store("")
	}
}

// Health returns a point-in-time readiness snapshot.
func (rt *Runtime) Health() Health {
	r := rt.reader.Load()
	h := Health{Codename: rt.Identity.Codename}
	if at, ok := rt.lastSyncAt.Load().(time.Time); ok {
		h.LastSyncAt = at
	}
	if e, ok := rt.lastSyncError.Load().(string); ok {
		h.LastSyncError = e
	}
	if r == nil {
		return h
	}
	h.Ready = true
	h.Fingerprint = r.Fingerprint()
	if n, err := r.DocCount(); err == nil {
		h.DocCount = n
	}
	return h
}

// currentReader returns the live segment, or a TenantNotReady error if none
// has been published yet.
func (rt *Runtime) currentReader() (*segment.Reader, error) {
	r := rt.reader.Load()
	if r == nil {
		return nil, apierr.Newf(apierr.TenantNotReady, "tenant %q has no published index yet", rt.Identity.Codename)
	}
	return r, nil
}

// Search tokenizes query with the tenant's analyzer profile, scores it
// against the current segment, and attaches highlighted snippet fragments
// to each hit. When connID is non-empty, the query's terms are remembered
// as that connection's most recent search, for a later
// fetch(mode=surrounding) on the same connection.
func (rt *Runtime) Search(ctx context.Context, connID, query string, limit int) ([]SearchHit, error) {
	r, err := rt.currentReader()
	if err != nil {
		return nil, err
	}

	terms := scorer.QueryTerms(rt.Profile, query)
	if len(terms) == 0 {
		return nil, apierr.New(apierr.InvalidArgument, "query contains no searchable terms")
	}

	hits, err := scorer.TopK(ctx, r, terms, limit, rt.Scoring.Options)
	if err != nil {
		return nil, err
	}

	if connID != "" {
		rt.connections.Store(connID, terms)
	}

	out := make([]SearchHit, 0, len(hits))
	for _, h := range hits {
		doc, err := r.StoredDocumentByKey(h.Key)
		if err != nil {
			continue
		}
		fragments := scorer.ExtractFragments(doc.Body, terms, rt.Scoring.Snippet)
		out = append(out, SearchHit{Key: h.Key, Title: h.Title, Score: h.Score, Fragments: fragments})
	}
	return out, nil
}

// Fetch returns a document's title and body by its unique key. In
// FetchModeSurrounding, the returned window is centered on the densest
// cluster of the most recent query's terms on connID, not a caller-supplied
// byte offset; a connID with no prior search on it falls back to the start
// of the document.
func (rt *Runtime) Fetch(connID, key string, mode FetchMode) (title, content string, err error) {
	r, err := rt.currentReader()
	if err != nil {
		return "", "", err
	}
	doc, err := r.StoredDocumentByKey(key)
	if err != nil {
		if err == segment.ErrNotFound {
			return "", "", apierr.Newf(apierr.NotFound, "no document with key %q", key)
		}
		return "", "", apierr.Newf(apierr.FetchFailed, "fetch %q: %v", key, err)
	}

	if mode == FetchModeSurrounding {
		var terms []string
		if connID != "" {
			if v, ok := rt.connections.Load(connID); ok {
				terms, _ = v.([]string)
			}
		}
		offset := scorer.BestOffset(doc.Body, terms, rt.Scoring.Snippet.SurroundingContextChars)
		window, _, _ := scorer.SurroundingWindow(doc.Body, offset, rt.Scoring.Snippet.SurroundingContextChars)
		return doc.Title, window, nil
	}
	return doc.Title, doc.Body, nil
}

// Describe reports the tenant's static identity alongside its current
// readiness. The dispatcher's DescribeTenant reads Identity directly and
// does not call it.
func (rt *Runtime) Describe() (Identity, Health) {
	return rt.Identity, rt.Health()
}
