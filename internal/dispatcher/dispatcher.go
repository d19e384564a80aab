// Package dispatcher wires the tenant registry together: given a parsed
// config.Config it constructs one tenant.Runtime and one syncrt.Runtime per
// configured tenant, keeps them in a name -> handle map guarded by an
// RWMutex (the registry pattern used throughout the pack), and exposes the
// five tool operations as plain Go methods so internal/httpapi and
// cmd/docsearchd can both call them without duplicating validation.
//
// This is the module's equivalent of the teacher's cmd/sagasu
// initializeComponents wiring function, promoted to its own package because
// both the HTTP server and the CLI's direct-mode commands need it.
package dispatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arcdocs/docsearch/internal/apierr"
	"github.com/arcdocs/docsearch/internal/audit"
	"github.com/arcdocs/docsearch/internal/config"
	"github.com/arcdocs/docsearch/internal/crawler"
	"github.com/arcdocs/docsearch/internal/logging"
	"github.com/arcdocs/docsearch/internal/segment"
	"github.com/arcdocs/docsearch/internal/syncrt"
	"github.com/arcdocs/docsearch/internal/syncrt/crawlrt"
	"github.com/arcdocs/docsearch/internal/syncrt/filesystemrt"
	"github.com/arcdocs/docsearch/internal/syncrt/gitrt"
	"github.com/arcdocs/docsearch/internal/tenant"
)

// Audit timeout scales with the tenant count when no explicit override is
// configured: a larger registry means a larger slowest filesystem walk, and
// a flat timeout that worked for one tenant starves audits once dozens are
// registered.
const (
	baseAuditTimeout      = 10 * time.Second
	perTenantAuditTimeout = 2 * time.Second
)

const (
	segmentsDirName  = "__search_segments"
	schedulerDirName = "__scheduler_meta"

	defaultRefreshInterval = 15 * time.Minute
)

// entry bundles a tenant's query runtime with its sync scheduler, the two
// halves syncrt.Runtime and tenant.Runtime deliberately keep decoupled.
// auditRoot is set only for filesystem-sourced tenants, whose contents can
// be re-walked synchronously for an on-demand audit; git and crawler
// tenants report NotSupported for TriggerAudit since their content only
// exists inside a staging checkout or a live crawl.
type entry struct {
	runtime   *tenant.Runtime
	scheduler syncrt.Runtime
	segDir    string
	auditRoot string
}

// Dispatcher holds the tenant registry and resolves a codename to its
// runtime for every tool operation.
type Dispatcher struct {
	logger *zap.Logger

	mu       sync.RWMutex
	entries  map[string]*entry
	order    []string // registration order, for stable ListTenants output

	// auditTimeoutOverride comes from infrastructure.audit_timeout_s. Zero
	// means fall back to the tenant-count-scaled default.
	auditTimeoutOverride time.Duration
}

// New returns an empty Dispatcher. Use Build to populate one from a parsed
// configuration.
func New(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{logger: logger, entries: make(map[string]*entry)}
}

// Build constructs a Dispatcher from cfg: one tenant.Runtime and one
// syncrt.Runtime per tenant, wired so a successful sync publishes directly
// into the tenant's segment pointer. It does not start any scheduler or
// open any segment; call Start for that.
func Build(cfg *config.Config, logger *zap.Logger) (*Dispatcher, error) {
	d := New(logger)
	d.auditTimeoutOverride = time.Duration(cfg.Infrastructure.AuditTimeoutSeconds) * time.Second
	for _, t := range cfg.Tenants {
		if err := d.registerTenant(t, cfg.Infrastructure); err != nil {
			return nil, fmt.Errorf("dispatcher: register tenant %q: %w", t.Codename, err)
		}
	}
	return d, nil
}

func (d *Dispatcher) registerTenant(t config.TenantConfig, infra config.Infrastructure) error {
	identity, scoring := tenant.FromTenantConfig(t)
	tenantLogger := logging.ForTenant(d.logger, t.Codename)

	segDir := filepath.Join(t.DocsRootDir, segmentsDirName)
	metaDir := filepath.Join(t.DocsRootDir, schedulerDirName)

	rt, err := tenant.New(identity, scoring, segDir, tenantLogger)
	if err != nil {
		return err
	}

	publish := func(path, fingerprint string) error {
		err := rt.SwapSegment(path, fingerprint)
		rt.RecordSync(time.Now(), err)
		if err == nil {
			if removed, rerr := segment.Reclaim(segDir); rerr != nil {
				tenantLogger.Warn("segment reclaim failed", zap.Error(rerr))
			} else if len(removed) > 0 {
				tenantLogger.Debug("reclaimed orphaned segments", zap.Strings("removed", removed))
			}
		}
		return err
	}

	scheduler, err := buildScheduler(t, infra, rt, segDir, metaDir, publish, tenantLogger)
	if err != nil {
		return err
	}

	e := &entry{runtime: rt, scheduler: scheduler, segDir: segDir}
	if t.SourceType == config.SourceFilesystem {
		e.auditRoot = t.DocsRootDir
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.entries[t.Codename]; exists {
		return fmt.Errorf("duplicate codename %q", t.Codename)
	}
	d.entries[t.Codename] = e
	d.order = append(d.order, t.Codename)
	return nil
}

func buildScheduler(t config.TenantConfig, infra config.Infrastructure, rt *tenant.Runtime, segDir, metaDir string, publish func(string, string) error, logger *zap.Logger) (syncrt.Runtime, error) {
	refresh := refreshInterval(t.RefreshSchedule)
	schema := rt.Scoring.Schema

	switch t.SourceType {
	case config.SourceFilesystem:
		return filesystemrt.New(t.DocsRootDir, schema, segDir, publish, refresh, logger), nil

	case config.SourceGit:
		spec := gitrt.RepoSpec{
			RepoURL:     t.Git.RepoURL,
			Branch:      t.Git.Branch,
			Subpaths:    t.Git.Subpaths,
			StripPrefix: t.Git.StripPrefix,
		}
		workDir := filepath.Join(metaDir, "git-checkout")
		return gitrt.New(spec, nil, workDir, schema, segDir, publish, refresh, logger), nil

	case config.SourceOnline:
		poolCfg := crawler.PoolConfig{
			MinConcurrency: orDefaultInt(infra.CrawlerMinConcurrency, 5),
			MaxConcurrency: orDefaultInt(infra.CrawlerMaxConcurrency, 20),
			MaxSessions:    orDefaultInt(infra.CrawlerMaxSessions, 50),
		}
		leaseTTL := time.Duration(orDefaultInt(infra.CrawlerLockTTLSeconds, 180)) * time.Second

		var entryURLs []string
		if t.Online.EntryURL != "" {
			entryURLs = append(entryURLs, t.Online.EntryURL)
		}

		crawlCfg := crawlrt.Config{
			EntryURLs:         entryURLs,
			WhitelistPrefixes: t.Online.WhitelistPrefixes,
			BlacklistPrefixes: t.Online.BlacklistPrefixes,
			MaxPages:          t.Online.MaxPages,
			Pool:              poolCfg,
			HostLimiter:       crawler.DefaultHostLimiterConfig(),
			LeaseTTL:          leaseTTL,
			RefreshSchedule:   t.RefreshSchedule,
			OwnerID:           uuid.NewString(),
		}
		// No concrete Fetcher ships with the core: HTML-to-markdown
		// normalization is an external collaborator per the external
		// interfaces contract. Nothing in this module supplies one: nil is
		// passed here, and crawlrt's tests construct their runtime directly
		// with a fake one.
		return crawlrt.New(crawlCfg, nil, nil, schema, segDir, metaDir, publish, logger), nil

	default:
		return nil, fmt.Errorf("unknown source_type %q", t.SourceType)
	}
}

func refreshInterval(schedule string) time.Duration {
	if schedule == "" {
		return defaultRefreshInterval
	}
	if d, err := time.ParseDuration(schedule); err == nil {
		return d
	}
	return defaultRefreshInterval
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// Start opens each tenant's existing segment (if any) so a restart serves
// immediately, then initializes every scheduler. Scheduler initialization
// runs concurrently across tenants; a single tenant's failure is logged and
// does not prevent the others from starting.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.RLock()
	entries := make([]*entry, 0, len(d.entries))
	for _, e := range d.entries {
		entries = append(entries, e)
	}
	d.mu.RUnlock()

	var g errgroup.Group
	for _, e := range entries {
		e := e
		if err := e.runtime.OpenExisting(); err != nil && d.logger != nil {
			d.logger.Warn("failed to open existing segment", zap.String("tenant", e.runtime.Identity.Codename), zap.Error(err))
		}

		g.Go(func() error {
			if err := e.scheduler.Initialize(ctx); err != nil && d.logger != nil {
				d.logger.Warn("scheduler initialize failed", zap.String("tenant", e.runtime.Identity.Codename), zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}

// Shutdown stops every tenant's scheduler within ctx's deadline. It does not
// close segments itself: the process exiting releases the memory-mapped
// readers.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.RLock()
	entries := make([]*entry, 0, len(d.entries))
	for _, e := range d.entries {
		entries = append(entries, e)
	}
	d.mu.RUnlock()

	var g errgroup.Group
	for _, e := range entries {
		e := e
		g.Go(func() error {
			if err := e.scheduler.Stop(ctx); err != nil && d.logger != nil {
				d.logger.Warn("scheduler stop failed", zap.String("tenant", e.runtime.Identity.Codename), zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}

// TriggerSync asks the named tenant's scheduler to run a sync. Unknown
// codename is <TenantNotFound>.
func (d *Dispatcher) TriggerSync(ctx context.Context, codename string, forceCrawler, forceFull bool) (syncrt.TriggerResult, error) {
	e, err := d.lookup(codename)
	if err != nil {
		return syncrt.TriggerResult{}, err
	}
	return e.scheduler.Trigger(ctx, forceCrawler, forceFull)
}

// TriggerAudit re-walks a filesystem-sourced tenant's docs_root_dir and
// compares its recomputed fingerprint against the published manifest,
// without rebuilding anything. Git and crawler tenants have no static root
// to re-walk on demand and report NotSupported.
func (d *Dispatcher) TriggerAudit(codename string) (audit.Report, error) {
	e, err := d.lookup(codename)
	if err != nil {
		return audit.Report{}, err
	}
	if e.auditRoot == "" {
		return audit.Report{}, apierr.Newf(apierr.NotSupported, "on-demand audit is not supported for tenant %q", codename)
	}

	src, err := filesystemrt.NewDirectorySource(e.auditRoot)
	if err != nil {
		return audit.Report{}, apierr.Newf(apierr.IndexCorrupt, "audit %q: %v", codename, err)
	}
	report, err := audit.RunWithTimeout(src, e.segDir, d.auditTimeout())
	if err != nil {
		return audit.Report{}, apierr.Newf(apierr.IndexCorrupt, "audit %q: %v", codename, err)
	}
	return report, nil
}

// SyncStats returns the named tenant's scheduler stats.
func (d *Dispatcher) SyncStats(codename string) (syncrt.Stats, error) {
	e, err := d.lookup(codename)
	if err != nil {
		return syncrt.Stats{}, err
	}
	return e.scheduler.Stats(), nil
}

func (d *Dispatcher) lookup(codename string) (*entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.entries[codename]
	if !ok {
		return nil, apierr.Newf(apierr.TenantNotFound, "unknown tenant %q", codename).WithDetails(map[string]any{
			"available": d.codenamesLocked(),
		})
	}
	return e, nil
}

// auditTimeout returns the configured override if set, otherwise a default
// that scales with the number of registered tenants.
func (d *Dispatcher) auditTimeout() time.Duration {
	if d.auditTimeoutOverride > 0 {
		return d.auditTimeoutOverride
	}
	d.mu.RLock()
	n := len(d.order)
	d.mu.RUnlock()
	return baseAuditTimeout + time.Duration(n)*perTenantAuditTimeout
}

func (d *Dispatcher) codenamesLocked() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}
