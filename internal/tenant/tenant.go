// Package tenant holds the per-tenant runtime: a lock-free handle onto the
// tenant's current segment plus the derived schema and scoring
// configuration needed to answer search/fetch/describe without touching
// any other tenant's state.
package tenant

import (
	"github.com/arcdocs/docsearch/internal/config"
	"github.com/arcdocs/docsearch/internal/docmodel"
	"github.com/arcdocs/docsearch/internal/scorer"
)

// Identity is the static, rarely-changing description of a tenant, derived
// once from config.TenantConfig at registration time.
type Identity struct {
	Codename    string
	DisplayName string
	Description string
	SourceKind  config.SourceType
	DocsRootDir string
	TestQueries []string
	URLPrefixes []string
}

// ScoringConfig bundles the BM25/phrase/fuzzy/snippet knobs derived from a
// tenant's search override, ready to hand to scorer.TopK and
// scorer.ExtractFragments.
type ScoringConfig struct {
	Schema          docmodel.Schema
	AnalyzerProfile string
	Options         scorer.Options
	Snippet         scorer.SnippetConfig
}

// FromTenantConfig derives an Identity and ScoringConfig from one parsed
// config.TenantConfig entry. Defaults are assumed already applied by
// config.Load; this function only reshapes, it never invents values.
func FromTenantConfig(t config.TenantConfig) (Identity, ScoringConfig) {
	identity := Identity{
		Codename:    t.Codename,
		DisplayName: t.DocsName,
		Description: t.Description,
		SourceKind:  t.SourceType,
		DocsRootDir: t.DocsRootDir,
		TestQueries: t.TestQueries,
	}
	if t.SourceType == config.SourceOnline {
		identity.URLPrefixes = t.Online.WhitelistPrefixes
	}

	schema := docmodel.DefaultSchema(t.Search.AnalyzerProfile)
	boosts := scorer.BoostsFromSchema(schema)
	for field, b := range t.Search.Boosts {
		boosts[field] = b
	}

	scoring := ScoringConfig{
		Schema:          schema,
		AnalyzerProfile: t.Search.AnalyzerProfile,
		Options: scorer.Options{
			Params: scorer.Params{
				K1: orDefault(t.Search.Ranking.BM25K1, scorer.DefaultParams().K1),
				B:  orDefault(t.Search.Ranking.BM25B, scorer.DefaultParams().B),
			},
			Boosts:            boosts,
			EnableFuzzy:       t.Search.Ranking.EnableFuzzy,
			EnablePhraseBonus: t.Search.Ranking.EnablePhraseBonus,
		},
		Snippet: scorer.SnippetConfig{
			Style:                   scorer.Style(orDefaultStr(t.Search.Snippet.Style, string(scorer.StylePlain))),
			FragmentCharLimit:       orDefaultInt(t.Search.Snippet.FragmentCharLimit, 240),
			MaxFragments:            orDefaultInt(t.Search.Snippet.MaxFragments, 2),
			SurroundingContextChars: orDefaultInt(t.Search.Snippet.SurroundingContextChars, 400),
		},
	}
	return identity, scoring
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultStr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
