package analyzer

import (
	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/english"
)

// aggressiveStemProfile shares tokenization and stopword removal with the
// default profile but stems with the Snowball (Porter2) English algorithm
// instead of the original Porter stemmer. The two disagree on some words:
// "generalization" stems to "general" here and to "gener" under Porter.
type aggressiveStemProfile struct{}

func newAggressiveStemProfile() Profile {
	return aggressiveStemProfile{}
}

func (aggressiveStemProfile) Name() string { return ProfileAggressiveStem }

func (aggressiveStemProfile) Tokenize(text string) []Token {
	words := scanWords(text)
	tokens := make([]Token, 0, len(words))
	pos := 0
	for _, w := range words {
		if englishStopWords[w] {
			continue
		}
		env := snowballstem.NewEnv(w)
		english.Stem(env)
		tokens = append(tokens, Token{Term: env.Current(), Position: pos})
		pos++
	}
	return tokens
}
