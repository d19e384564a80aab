package scorer

import (
	"context"
	"sort"

	"github.com/arcdocs/docsearch/internal/segment"
)

// Options configures one TopK evaluation.
type Options struct {
	Params Params

	// Boosts maps an indexed field name to its BM25F weight. Fields absent
	// from the map are not searched.
	Boosts map[string]float64

	EnableFuzzy       bool
	EnablePhraseBonus bool
	PhraseWindow      int
	PhraseCapRatio    float64
}

// Hit is one scored document.
type Hit struct {
	DocID int64
	Key   string
	Title string
	Score float64
}

// TopK scores every document in reader matching any of terms across the
// boosted fields and returns up to k hits ordered by descending score. It
// checks ctx between documents so a caller-side timeout or cancellation
// stops work promptly instead of running the whole corpus.
func TopK(ctx context.Context, reader *segment.Reader, terms []string, k int, opts Options) ([]Hit, error) {
	if opts.PhraseWindow <= 0 {
		opts.PhraseWindow = DefaultPhraseWindow
	}
	if opts.PhraseCapRatio <= 0 {
		opts.PhraseCapRatio = DefaultPhraseCapRatio
	}

	totalDocs, err := reader.DocCount()
	if err != nil {
		return nil, err
	}
	if totalDocs == 0 {
		return nil, nil
	}

	type docAccum struct {
		score          float64
		byFieldByTerm  map[string]map[string][]int
	}
	accum := make(map[int64]*docAccum)

	for field, boost := range opts.Boosts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		queryTerms := terms
		if opts.EnableFuzzy {
			queryTerms = expandFuzzyForField(reader, field, terms)
		}

		stats, err := reader.Stats(field)
		if err != nil {
			return nil, err
		}

		for _, term := range queryTerms {
			df, err := reader.DocFrequency(field, term)
			if err != nil {
				return nil, err
			}
			if df == 0 {
				continue
			}
			idf := IDF(totalDocs, int64(df))

			postings, err := reader.Postings(field, term)
			if err != nil {
				return nil, err
			}

			for _, p := range postings {
				fieldLen, err := reader.FieldLength(field, p.DocID)
				if err != nil {
					return nil, err
				}
				ts := TermScore(idf, p.TermFreq, fieldLen, int(stats.AvgFieldLen), boost, opts.Params)
				if ts <= 0 {
					continue
				}

				a, ok := accum[p.DocID]
				if !ok {
					a = &docAccum{byFieldByTerm: make(map[string]map[string][]int)}
					accum[p.DocID] = a
				}
				a.score += ts

				if opts.EnablePhraseBonus {
					if a.byFieldByTerm[field] == nil {
						a.byFieldByTerm[field] = make(map[string][]int)
					}
					a.byFieldByTerm[field][term] = append(a.byFieldByTerm[field][term], p.Positions...)
				}
			}
		}
	}

	if opts.EnablePhraseBonus {
		for _, a := range accum {
			for _, byTerm := range a.byFieldByTerm {
				a.score += phraseBonus(byTerm, opts.PhraseWindow, opts.PhraseCapRatio, a.score)
			}
		}
	}

	hits := make([]Hit, 0, len(accum))
	for docID, a := range accum {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := reader.StoredDocument(docID)
		if err != nil {
			return nil, err
		}
		hits = append(hits, Hit{DocID: docID, Key: doc.Key, Title: doc.Title, Score: a.score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})

	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func expandFuzzyForField(reader *segment.Reader, field string, terms []string) []string {
	dict, err := reader.Terms(field)
	if err != nil {
		return terms
	}
	out := append([]string{}, terms...)
	for _, t := range terms {
		out = append(out, expandFuzzy(t, dict)...)
	}
	return out
}
