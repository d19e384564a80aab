package analyzer

import "unicode"

// codeFriendlyProfile preserves identifiers as searchable whole tokens while
// also emitting their snake_case/camelCase/dotted components, so a query for
// "maxRetry" matches a stored "max_retry_count" and vice versa. It never
// stems or drops stopwords: "for", "if", "do" are meaningful in code.
type codeFriendlyProfile struct{}

func newCodeFriendlyProfile() Profile {
	return codeFriendlyProfile{}
}

func (codeFriendlyProfile) Name() string { return ProfileCodeFriendly }

func (codeFriendlyProfile) Tokenize(text string) []Token {
	words := scanIdentifiers(text)
	var tokens []Token
	pos := 0
	for _, w := range words {
		lw := lower(w)
		parts := splitIdentifier(w)
		if len(parts) <= 1 {
			tokens = append(tokens, Token{Term: lw, Position: pos})
			pos++
			continue
		}
		// Whole identifier first, then its parts at consecutive positions
		// starting at the whole's own position, so a phrase query spanning
		// the split tokens still lines up with the identifier as written.
		tokens = append(tokens, Token{Term: lw, Position: pos})
		for _, p := range parts {
			tokens = append(tokens, Token{Term: lower(p), Position: pos})
			pos++
		}
	}
	return tokens
}

// scanIdentifiers is like scanWords but also keeps '_', '.', and '-' attached
// to a run so identifiers such as "max_retry_count" or "pkg.Reader" survive
// as single words for splitIdentifier to decompose.
func scanIdentifiers(text string) []string {
	runes := []rune(text)
	var words []string
	i := 0
	isIdentRune := func(r rune) bool {
		return isWordRune(r) || r == '_' || r == '.' || r == '-'
	}
	for i < len(runes) {
		if !isWordRune(runes[i]) {
			i++
			continue
		}
		start := i
		for i < len(runes) && isIdentRune(runes[i]) {
			i++
		}
		// trim trailing separators picked up by the greedy scan, e.g. a
		// dotted identifier followed by a period ending a sentence.
		end := i
		for end > start && !isWordRune(runes[end-1]) {
			end--
		}
		words = append(words, string(runes[start:end]))
		i = end
		if i == start {
			i++
		}
	}
	return words
}

// splitIdentifier breaks one identifier into its snake_case, camelCase, and
// dotted/hyphenated components. "HTTPServer_max.value" -> ["HTTP", "Server",
// "max", "value"].
func splitIdentifier(w string) []string {
	runes := []rune(w)
	var parts []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			parts = append(parts, string(cur))
			cur = nil
		}
	}
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '_' || r == '.' || r == '-':
			flush()
		case unicode.IsUpper(r) && len(cur) > 0 && !unicode.IsUpper(cur[len(cur)-1]):
			// lower-to-upper boundary: "maxRetry" -> "max" | "Retry"
			flush()
			cur = append(cur, r)
		case unicode.IsUpper(r) && len(cur) > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(cur[len(cur)-1]):
			// run-of-uppercase to titlecase boundary: "HTTPServer" -> "HTTP" | "Server"
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return parts
}
