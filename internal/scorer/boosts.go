package scorer

import (
	"github.com/arcdocs/docsearch/internal/analyzer"
	"github.com/arcdocs/docsearch/internal/docmodel"
)

// BoostsFromSchema builds the field->boost map TopK needs from a tenant's
// document schema, restricted to the fields that are actually indexed.
func BoostsFromSchema(schema docmodel.Schema) map[string]float64 {
	out := make(map[string]float64)
	for _, f := range schema.IndexedFields() {
		out[f.Name] = schema.Boost(f.Name)
	}
	return out
}

// QueryTerms tokenizes a raw query string with profile and returns just the
// term strings, discarding position information the query side doesn't
// need (every query term is treated as occurring once, independent of how
// many times it was typed).
func QueryTerms(profile analyzer.Profile, query string) []string {
	toks := profile.Tokenize(query)
	seen := make(map[string]bool, len(toks))
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if seen[t.Term] {
			continue
		}
		seen[t.Term] = true
		out = append(out, t.Term)
	}
	return out
}
