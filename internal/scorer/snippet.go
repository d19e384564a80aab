package scorer

import (
	"strings"
)

// Style selects how a matched term is wrapped inside an extracted snippet.
type Style string

const (
	StylePlain Style = "plain"
	StyleHTML  Style = "html"
)

// SnippetConfig mirrors a tenant's snippet override (§6 "snippet: {style,
// fragment_char_limit, max_fragments, surrounding_context_chars}").
type SnippetConfig struct {
	Style                   Style
	FragmentCharLimit       int
	MaxFragments            int
	SurroundingContextChars int
}

// DefaultSnippetConfig matches the spec's defaults: 2 fragments, 240
// characters each, plain-bracket highlighting.
func DefaultSnippetConfig() SnippetConfig {
	return SnippetConfig{Style: StylePlain, FragmentCharLimit: 240, MaxFragments: 2, SurroundingContextChars: 400}
}

// Fragment is one extracted, highlighted excerpt of a document's body.
type Fragment struct {
	Text  string
	Start int
	End   int
}

// ExtractFragments finds up to cfg.MaxFragments densest clusters of
// matchTerms in body, each expanded to the nearest sentence boundary and
// capped at cfg.FragmentCharLimit characters, with matched terms wrapped
// per cfg.Style. Generalizes the teacher's truncate-only Highlight into a
// relevance-aware excerpt picker.
func ExtractFragments(body string, matchTerms []string, cfg SnippetConfig) []Fragment {
	if body == "" || len(matchTerms) == 0 {
		return nil
	}
	if cfg.FragmentCharLimit <= 0 {
		cfg.FragmentCharLimit = 240
	}
	if cfg.MaxFragments <= 0 {
		cfg.MaxFragments = 2
	}

	lowerBody := strings.ToLower(body)
	occurrences := findOccurrences(lowerBody, matchTerms)
	if len(occurrences) == 0 {
		return nil
	}

	clusters := densestClusters(occurrences, len(body), cfg.MaxFragments, cfg.FragmentCharLimit)

	fragments := make([]Fragment, 0, len(clusters))
	for _, c := range clusters {
		start, end := expandToSentence(body, c.start, c.end, cfg.FragmentCharLimit)
		text := highlight(body[start:end], matchTerms, cfg.Style)
		fragments = append(fragments, Fragment{Text: text, Start: start, End: end})
	}
	return fragments
}

type occurrence struct {
	start, end int
}

// findOccurrences returns every byte-range occurrence of any term in body
// (already lowercased), sorted by position.
func findOccurrences(lowerBody string, terms []string) []occurrence {
	var occ []occurrence
	for _, term := range terms {
		lt := strings.ToLower(term)
		if lt == "" {
			continue
		}
		from := 0
		for {
			idx := strings.Index(lowerBody[from:], lt)
			if idx < 0 {
				break
			}
			start := from + idx
			occ = append(occ, occurrence{start: start, end: start + len(lt)})
			from = start + len(lt)
		}
	}
	sortOccurrences(occ)
	return occ
}

func sortOccurrences(occ []occurrence) {
	for i := 1; i < len(occ); i++ {
		for j := i; j > 0 && occ[j-1].start > occ[j].start; j-- {
			occ[j-1], occ[j] = occ[j], occ[j-1]
		}
	}
}

type window struct{ start, end int }

// densestClusters greedily picks up to maxFragments non-overlapping
// fixed-width windows (width=fragmentLimit) that each contain the most
// occurrences, covering first the richest region of the body.
func densestClusters(occ []occurrence, bodyLen, maxFragments, fragmentLimit int) []window {
	type candidate struct {
		window window
		count  int
	}
	var candidates []candidate
	for _, o := range occ {
		half := fragmentLimit / 2
		start := o.start - half
		if start < 0 {
			start = 0
		}
		end := start + fragmentLimit
		if end > bodyLen {
			end = bodyLen
			start = end - fragmentLimit
			if start < 0 {
				start = 0
			}
		}
		count := 0
		for _, other := range occ {
			if other.start >= start && other.end <= end {
				count++
			}
		}
		candidates = append(candidates, candidate{window: window{start: start, end: end}, count: count})
	}

	// Highest density first; skip candidates overlapping an already chosen
	// window so fragments don't repeat the same text.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j-1].count < candidates[j].count; j-- {
			candidates[j-1], candidates[j] = candidates[j], candidates[j-1]
		}
	}

	var chosen []window
	for _, c := range candidates {
		if len(chosen) >= maxFragments {
			break
		}
		overlaps := false
		for _, w := range chosen {
			if c.window.start < w.end && w.start < c.window.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			chosen = append(chosen, c.window)
		}
	}
	return chosen
}

// expandToSentence nudges start/end outward to the nearest sentence
// boundary (., !, ?, or newline) without exceeding limit total characters.
func expandToSentence(body string, start, end, limit int) (int, int) {
	runes := []rune(body)
	s, e := start, end
	for s > 0 && e-s < limit && !isSentenceBoundary(runes[s-1]) {
		s--
	}
	for e < len(runes) && e-s < limit && !isSentenceBoundary(runes[e]) {
		e++
	}
	if s < 0 {
		s = 0
	}
	if e > len(runes) {
		e = len(runes)
	}
	return byteOffset(body, s), byteOffset(body, e)
}

func isSentenceBoundary(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '\n'
}

func byteOffset(s string, runeIdx int) int {
	count := 0
	for i := range s {
		if count == runeIdx {
			return i
		}
		count++
	}
	return len(s)
}

func highlight(fragment string, terms []string, style Style) string {
	open, close := "[", "]"
	if style == StyleHTML {
		open, close = "<mark>", "</mark>"
	}

	lower := strings.ToLower(fragment)
	type span struct{ start, end int }
	var spans []span
	for _, term := range terms {
		lt := strings.ToLower(term)
		if lt == "" {
			continue
		}
		from := 0
		for {
			idx := strings.Index(lower[from:], lt)
			if idx < 0 {
				break
			}
			start := from + idx
			spans = append(spans, span{start: start, end: start + len(lt)})
			from = start + len(lt)
		}
	}
	if len(spans) == 0 {
		return fragment
	}
	sortSpans(spans)
	merged := mergeSpans(spans)

	var b strings.Builder
	last := 0
	for _, sp := range merged {
		b.WriteString(fragment[last:sp.start])
		b.WriteString(open)
		b.WriteString(fragment[sp.start:sp.end])
		b.WriteString(close)
		last = sp.end
	}
	b.WriteString(fragment[last:])
	return b.String()
}

func sortSpans(spans []struct{ start, end int }) {
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j-1].start > spans[j].start; j-- {
			spans[j-1], spans[j] = spans[j], spans[j-1]
		}
	}
}

func mergeSpans(spans []struct{ start, end int }) []struct{ start, end int } {
	if len(spans) == 0 {
		return nil
	}
	out := []struct{ start, end int }{spans[0]}
	for _, sp := range spans[1:] {
		last := &out[len(out)-1]
		if sp.start <= last.end {
			if sp.end > last.end {
				last.end = sp.end
			}
			continue
		}
		out = append(out, sp)
	}
	return out
}

// BestOffset returns the byte offset of the densest cluster of matchTerms in
// body: the center of whichever region has the most query-term hits. Used by
// fetch(mode=surrounding) to pick a window around the most recent query on a
// connection instead of requiring the caller to supply a byte offset.
func BestOffset(body string, matchTerms []string, contextChars int) int {
	if body == "" || len(matchTerms) == 0 {
		return 0
	}
	if contextChars <= 0 {
		contextChars = 400
	}
	lowerBody := strings.ToLower(body)
	occurrences := findOccurrences(lowerBody, matchTerms)
	if len(occurrences) == 0 {
		return 0
	}
	clusters := densestClusters(occurrences, len(body), 1, contextChars)
	if len(clusters) == 0 {
		return 0
	}
	return (clusters[0].start + clusters[0].end) / 2
}

// SurroundingWindow returns a window of up to contextChars characters
// around center, used by the fetch(mode=surrounding) operation.
func SurroundingWindow(body string, center, contextChars int) (string, int, int) {
	if contextChars <= 0 {
		contextChars = 400
	}
	runes := []rune(body)
	centerRune := byteToRuneIdx(body, center)
	half := contextChars / 2
	start := centerRune - half
	if start < 0 {
		start = 0
	}
	end := start + contextChars
	if end > len(runes) {
		end = len(runes)
		start = end - contextChars
		if start < 0 {
			start = 0
		}
	}
	return string(runes[start:end]), byteOffset(body, start), byteOffset(body, end)
}

func byteToRuneIdx(s string, byteIdx int) int {
	count := 0
	for i := range s {
		if i >= byteIdx {
			return count
		}
		count++
	}
	return count
}
