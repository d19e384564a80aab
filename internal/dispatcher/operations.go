package dispatcher

import (
	"context"
	"sort"

	"github.com/arcdocs/docsearch/internal/apierr"
	"github.com/arcdocs/docsearch/internal/scorer"
	"github.com/arcdocs/docsearch/internal/tenant"
	"github.com/arcdocs/docsearch/pkg/utils"
)

const maxQueryChars = 1024
const maxSearchSize = 100
const maxListedDescriptionChars = 160

// TenantSummary is the list_tenants/find_tenant element shape.
type TenantSummary struct {
	Codename    string
	Description string
}

// TenantDescription is the describe_tenant response shape.
type TenantDescription struct {
	Codename    string
	DisplayName string
	Description string
	SourceKind  string
	TestQueries []string
	URLPrefixes []string
}

// SearchResultHit is one entry of root_search's results list.
type SearchResultHit struct {
	URI     string
	Title   string
	Score   float64
	Snippet string
}

// SearchResponse is root_search's response shape.
type SearchResponse struct {
	Query   string
	Results []SearchResultHit
}

// FetchResponse is root_fetch's response shape.
type FetchResponse struct {
	URI     string
	Title   string
	Content string
}

// ListTenants returns every registered tenant's codename and description,
// in registration order.
func (d *Dispatcher) ListTenants() []TenantSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]TenantSummary, 0, len(d.order))
	for _, codename := range d.order {
		e := d.entries[codename]
		out = append(out, TenantSummary{
			Codename:    codename,
			Description: utils.Truncate(e.runtime.Identity.Description, maxListedDescriptionChars),
		})
	}
	return out
}

// FindTenant fuzzy-matches query against every tenant's codename and
// display name using the scorer's edit-distance helper, returning matches
// within edit distance 2, closest first. A query that is only a substring
// of a codename or display name, further than 2 edits away, is not matched.
func (d *Dispatcher) FindTenant(query string) []TenantSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	type scored struct {
		summary TenantSummary
		dist    int
	}
	var matches []scored
	for _, codename := range d.order {
		e := d.entries[codename]
		identity := e.runtime.Identity
		dist := bestDistance(query, identity.Codename, identity.DisplayName)
		if dist <= 2 {
			matches = append(matches, scored{
				summary: TenantSummary{
					Codename:    identity.Codename,
					Description: utils.Truncate(identity.Description, maxListedDescriptionChars),
				},
				dist: dist,
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].dist < matches[j].dist })

	out := make([]TenantSummary, len(matches))
	for i, m := range matches {
		out[i] = m.summary
	}
	return out
}

func bestDistance(query string, candidates ...string) int {
	best := -1
	for _, c := range candidates {
		dist := scorer.EditDistance(query, c)
		if best == -1 || dist < best {
			best = dist
		}
	}
	return best
}

// DescribeTenant returns the named tenant's static identity.
func (d *Dispatcher) DescribeTenant(codename string) (TenantDescription, error) {
	e, err := d.lookup(codename)
	if err != nil {
		return TenantDescription{}, err
	}
	identity := e.runtime.Identity
	return TenantDescription{
		Codename:    identity.Codename,
		DisplayName: identity.DisplayName,
		Description: identity.Description,
		SourceKind:  string(identity.SourceKind),
		TestQueries: identity.TestQueries,
		URLPrefixes: identity.URLPrefixes,
	}, nil
}

// RootSearch validates the request, resolves tenantCodename, and forwards
// to the tenant's Search. size is clamped to [0, 100] per §9's resolved
// open question; size=0 returns an empty result list without error. connID
// identifies the calling connection so a later root_fetch in
// surrounding mode on the same connection can center on this query.
func (d *Dispatcher) RootSearch(ctx context.Context, connID, tenantCodename, query string, size int) (SearchResponse, error) {
	if err := validateQuery(query); err != nil {
		return SearchResponse{}, err
	}
	size = clampSize(size)

	e, err := d.lookup(tenantCodename)
	if err != nil {
		return SearchResponse{}, err
	}
	if size == 0 {
		return SearchResponse{Query: query, Results: []SearchResultHit{}}, nil
	}

	hits, err := e.runtime.Search(ctx, connID, query, size)
	if err != nil {
		return SearchResponse{}, err
	}

	results := make([]SearchResultHit, 0, len(hits))
	for _, h := range hits {
		results = append(results, SearchResultHit{
			URI:     h.Key,
			Title:   h.Title,
			Score:   h.Score,
			Snippet: joinFragments(h.Fragments),
		})
	}
	return SearchResponse{Query: query, Results: results}, nil
}

func joinFragments(fragments []scorer.Fragment) string {
	if len(fragments) == 0 {
		return ""
	}
	out := fragments[0].Text
	for _, f := range fragments[1:] {
		out += " … " + f.Text
	}
	return out
}

// RootFetch validates the request, resolves tenantCodename, and forwards to
// the tenant's Fetch. connID identifies the calling connection; in
// FetchModeSurrounding it is used to recall that connection's most recent
// root_search query instead of requiring a client-supplied byte offset.
func (d *Dispatcher) RootFetch(connID, tenantCodename, uri string, mode tenant.FetchMode) (FetchResponse, error) {
	if uri == "" {
		return FetchResponse{}, apierr.New(apierr.InvalidArgument, "uri must not be empty")
	}
	e, err := d.lookup(tenantCodename)
	if err != nil {
		return FetchResponse{}, err
	}

	title, content, err := e.runtime.Fetch(connID, uri, mode)
	if err != nil {
		return FetchResponse{}, err
	}
	return FetchResponse{URI: uri, Title: title, Content: content}, nil
}

// BrowseTenant forwards the browse(path, depth) operation to the named
// tenant's runtime. Unsupported for online-sourced tenants.
func (d *Dispatcher) BrowseTenant(codename, path string, depth int) (tenant.DirectoryTree, error) {
	e, err := d.lookup(codename)
	if err != nil {
		return tenant.DirectoryTree{}, err
	}
	return e.runtime.Browse(path, depth)
}

func validateQuery(query string) error {
	if query == "" {
		return apierr.New(apierr.InvalidArgument, "query must not be empty")
	}
	if len(query) > maxQueryChars {
		return apierr.Newf(apierr.InvalidArgument, "query exceeds %d characters", maxQueryChars)
	}
	return nil
}

func clampSize(size int) int {
	if size < 0 {
		return 0
	}
	if size > maxSearchSize {
		return maxSearchSize
	}
	return size
}
