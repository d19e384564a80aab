package analyzer

import porterstemmer "github.com/blevesearch/go-porterstemmer"

// defaultProfile lowercases, drops English stopwords, and applies a light
// (Porter) stemmer. It is the profile used for title, body, and heading
// fields unless a tenant's schema overrides it.
type defaultProfile struct{}

func newDefaultProfile() Profile {
	return defaultProfile{}
}

func (defaultProfile) Name() string { return ProfileDefault }

func (defaultProfile) Tokenize(text string) []Token {
	words := scanWords(text)
	tokens := make([]Token, 0, len(words))
	pos := 0
	for _, w := range words {
		if englishStopWords[w] {
			continue
		}
		stemmed := porterstemmer.StemString(w)
		tokens = append(tokens, Token{Term: stemmed, Position: pos})
		pos++
	}
	return tokens
}
