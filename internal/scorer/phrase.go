package scorer

import "sort"

// DefaultPhraseWindow is the span (in token positions) within which two
// query terms must fall to count as "close together" for the proximity
// bonus.
const DefaultPhraseWindow = 8

// DefaultPhraseCapRatio bounds the proximity bonus to at most this fraction
// of the term-match base score, so proximity can never dominate relevance.
const DefaultPhraseCapRatio = 0.20

// phraseBonus computes an additive bonus for one field's position lists
// when two or more distinct query terms occur within window positions of
// each other. positionsByTerm holds, for the document/field under
// evaluation, each matched query term's hit positions (already limited to
// this field). The bonus scales with how many distinct terms cluster
// together and is capped at capRatio * baseScore.
func phraseBonus(positionsByTerm map[string][]int, window int, capRatio, baseScore float64) float64 {
	if len(positionsByTerm) < 2 || baseScore <= 0 {
		return 0
	}

	type hit struct {
		pos  int
		term string
	}
	var hits []hit
	for term, positions := range positionsByTerm {
		for _, p := range positions {
			hits = append(hits, hit{pos: p, term: term})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	best := 0
	left := 0
	seen := make(map[string]int)
	distinct := 0
	for right := 0; right < len(hits); right++ {
		seen[hits[right].term]++
		if seen[hits[right].term] == 1 {
			distinct++
		}
		for hits[right].pos-hits[left].pos > window {
			seen[hits[left].term]--
			if seen[hits[left].term] == 0 {
				distinct--
			}
			left++
		}
		if distinct > best {
			best = distinct
		}
	}

	if best < 2 {
		return 0
	}

	// More distinct terms clustering together earns a larger fraction of
	// the cap, saturating once every matched term has been seen clustered.
	fraction := float64(best) / float64(len(positionsByTerm))
	bonus := baseScore * capRatio * fraction
	cap := baseScore * capRatio
	if bonus > cap {
		bonus = cap
	}
	return bonus
}
