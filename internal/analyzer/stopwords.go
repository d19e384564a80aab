package analyzer

import (
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
)

// englishStopWords loads bleve's own lang/en stopword resource through its
// analysis.TokenMap loader: the same data backing bleve's "en" analyzer,
// without going through bleve's registry/cache, which exists to serve a
// pluggable index-time analyzer chain this package doesn't need.
var englishStopWords = loadEnglishStopWords()

func loadEnglishStopWords() analysis.TokenMap {
	m := analysis.NewTokenMap()
	_ = m.LoadBytes(en.EnStopWords)
	return m
}
