package analyzer

import (
	"unicode"

	bleveunicode "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

var wordTokenizer = bleveunicode.NewUnicodeTokenizer()

// scanWords splits text into word tokens using bleve's unicode tokenizer,
// the same UAX#29 segmentation bleve's own analyzers use, lowercased in
// scan order.
func scanWords(text string) []string {
	stream := wordTokenizer.Tokenize([]byte(text))
	words := make([]string, 0, len(stream))
	for _, tok := range stream {
		words = append(words, lower(string(tok.Term)))
	}
	return words
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func lower(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, unicode.ToLower(r))
	}
	return string(out)
}
