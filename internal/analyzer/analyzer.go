// Package analyzer implements the three named analyzer profiles required by
// the document schema: a default English-leaning profile, an aggressive-stem
// profile, and a code-friendly profile that preserves identifier components.
// Each profile is a deterministic function string -> ordered (token,
// position) pairs (§3 of the spec).
package analyzer

import "fmt"

// Token is one analyzed term at a position in the field's token stream.
type Token struct {
	Term     string
	Position int
}

// Profile is a named, deterministic tokenizer/normalizer.
type Profile interface {
	Name() string
	Tokenize(text string) []Token
}

// FieldGap is the minimum position gap the indexer inserts between
// independently-scanned spans (separate list entries of one field; each
// field has its own position space) so that phrase-proximity
// scoring never produces a spurious cross-boundary hit (§3).
const FieldGap = 128

const (
	// ProfileDefault is the default English-leaning profile: lowercasing,
	// stopword removal, and a light (Porter) stemmer.
	ProfileDefault = "default"
	// ProfileAggressiveStem applies a more aggressive (Snowball/Porter2)
	// stemmer on top of the same tokenization as ProfileDefault.
	ProfileAggressiveStem = "aggressive-stem"
	// ProfileCodeFriendly preserves identifier components (snake_case,
	// camelCase, dotted paths) as both whole and split tokens, with no
	// stemming or stopword removal.
	ProfileCodeFriendly = "code-friendly"
)

var registry = map[string]Profile{
	ProfileDefault:         newDefaultProfile(),
	ProfileAggressiveStem:  newAggressiveStemProfile(),
	ProfileCodeFriendly:    newCodeFriendlyProfile(),
}

// Get returns the named profile, or an error if no such profile is registered.
func Get(name string) (Profile, error) {
	p, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("analyzer: unknown profile %q", name)
	}
	return p, nil
}

// MustGet panics if name is not a registered profile. Used at
// configuration-validation time, never on the query/index hot path.
func MustGet(name string) Profile {
	p, err := Get(name)
	if err != nil {
		panic(err)
	}
	return p
}
