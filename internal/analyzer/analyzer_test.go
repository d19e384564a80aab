package analyzer

import "testing"

func terms(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Term
	}
	return out
}

func TestGetUnknownProfile(t *testing.T) {
	if _, err := Get("nonexistent"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestDefaultProfileStopwordsAndStemming(t *testing.T) {
	p := MustGet(ProfileDefault)
	toks := p.Tokenize("The running dogs are jumping over the fences")
	got := terms(toks)
	for _, w := range got {
		if w == "the" || w == "are" || w == "over" {
			t.Fatalf("stopword %q leaked into tokens: %v", w, got)
		}
	}
	want := []string{"run", "dog", "jump", "fenc"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want terms matching %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("token %d = %q, want %q", i, got[i], w)
		}
	}
}

func TestDefaultProfilePositionsAreSequential(t *testing.T) {
	p := MustGet(ProfileDefault)
	toks := p.Tokenize("alpha beta gamma")
	for i, tok := range toks {
		if tok.Position != i {
			t.Errorf("token %d (%q) has position %d, want %d", i, tok.Term, tok.Position, i)
		}
	}
}

func TestDefaultAndAggressiveProfilesStemToSingleToken(t *testing.T) {
	def := MustGet(ProfileDefault)
	agg := MustGet(ProfileAggressiveStem)
	word := "generalization"
	d := terms(def.Tokenize(word))
	a := terms(agg.Tokenize(word))
	if len(d) != 1 || len(a) != 1 {
		t.Fatalf("expected single-token stems, got %v and %v", d, a)
	}
}

func TestCodeFriendlyProfilePreservesWholeAndSplitsParts(t *testing.T) {
	p := MustGet(ProfileCodeFriendly)
	toks := p.Tokenize("maxRetryCount and max_retry_count")
	got := terms(toks)

	hasWhole := false
	hasPart := false
	for _, w := range got {
		if w == "maxretrycount" {
			hasWhole = true
		}
		if w == "retry" {
			hasPart = true
		}
	}
	if !hasWhole {
		t.Errorf("expected whole identifier token among %v", got)
	}
	if !hasPart {
		t.Errorf("expected split part token among %v", got)
	}
}

func TestCodeFriendlyProfileNoStopwordRemoval(t *testing.T) {
	p := MustGet(ProfileCodeFriendly)
	toks := p.Tokenize("for i := 0; i < n; i++")
	found := false
	for _, tok := range toks {
		if tok.Term == "for" {
			found = true
		}
	}
	if !found {
		t.Error("code-friendly profile should not drop \"for\" as a stopword")
	}
}

func TestSplitIdentifierBoundaries(t *testing.T) {
	cases := map[string][]string{
		"max_retry_count": {"max", "retry", "count"},
		"maxRetryCount":   {"max", "Retry", "Count"},
		"HTTPServer":      {"HTTP", "Server"},
		"pkg.Reader":      {"pkg", "Reader"},
		"simple":          {"simple"},
	}
	for in, want := range cases {
		got := splitIdentifier(in)
		if len(got) != len(want) {
			t.Errorf("splitIdentifier(%q) = %v, want %v", in, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("splitIdentifier(%q)[%d] = %q, want %q", in, i, got[i], want[i])
			}
		}
	}
}
