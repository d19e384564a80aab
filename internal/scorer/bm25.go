// Package scorer implements BM25F relevance scoring, fuzzy term expansion,
// phrase-proximity bonuses, and snippet extraction over a segment.Reader. It
// has no knowledge of tenants or dispatch; it scores one query against one
// already-open segment.
package scorer

import "math"

// Params configures the BM25 free parameters (§4.2). Defaults match
// Okapi BM25's usual k1=1.2, b=0.75.
type Params struct {
	K1 float64
	B  float64
}

// DefaultParams returns the standard BM25 tuning.
func DefaultParams() Params {
	return Params{K1: 1.2, B: 0.75}
}

// IDF computes the inverse document frequency
// max(0, ln((N-df+0.5)/(df+0.5)+1)). The +1 inside the log keeps the value
// above zero whenever docFreq <= totalDocs, so a term present in every
// document still gets a small positive weight; the floor at zero only
// takes effect when docFreq exceeds totalDocs.
func IDF(totalDocs, docFreq int64) float64 {
	if totalDocs <= 0 || docFreq <= 0 {
		return 0
	}
	n := float64(totalDocs)
	df := float64(docFreq)
	v := math.Log((n-df+0.5)/(df+0.5) + 1)
	return math.Max(0, v)
}

// TermScore is the BM25F contribution of one term in one field for one
// document: idf * (tf*(k1+1)) / (tf + k1*(1-b+b*fieldLen/avgFieldLen)) * boost.
func TermScore(idf float64, termFreq int, fieldLen, avgFieldLen int, boost float64, p Params) float64 {
	if termFreq == 0 {
		return 0
	}
	tf := float64(termFreq)
	norm := 1 - p.B + p.B*safeRatio(fieldLen, avgFieldLen)
	denom := tf + p.K1*norm
	if denom == 0 {
		return 0
	}
	return idf * (tf * (p.K1 + 1) / denom) * boost
}

func safeRatio(fieldLen, avgFieldLen int) float64 {
	if avgFieldLen <= 0 {
		return 1
	}
	return float64(fieldLen) / float64(avgFieldLen)
}
