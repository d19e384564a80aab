// Package docmodel defines the document and schema shapes shared by every
// layer above the segment store: the indexer writes them, the segment store
// persists them, and the scorer reads them back.
package docmodel

// Document is a single ingested source document, pre-normalized to
// markdown/HTML-derived text by the sync runtime that produced it.
type Document struct {
	// Key is the document's unique identifier: the source URL or the
	// filesystem-relative path. Non-empty and collision-free within a
	// segment.
	Key string

	Title         string
	Body          string
	HeadingsH1    []string
	HeadingsH2    []string
	HeadingsOther []string
	CodeBlocks    []string
	URLPathTokens string

	// Metadata is passed through and stored but never indexed or scored.
	Metadata map[string]string
}

// Field names understood by the default schema. Callers may add others
// through FieldDescriptor but these are the ones docmodel itself populates
// from a Document.
const (
	FieldTitle         = "title"
	FieldBody          = "body"
	FieldHeadingsH1    = "headings_h1"
	FieldHeadingsH2    = "headings_h2"
	FieldHeadingsOther = "headings_other"
	FieldCodeBlocks    = "code_blocks"
	FieldURLPath       = "url_path_tokens"
)

// Text returns the concatenated text of the named field, joining list
// fields with a single newline so analyzer position gaps between entries
// stay well under the cross-field gap.
func (d *Document) Text(field string) string {
	switch field {
	case FieldTitle:
		return d.Title
	case FieldBody:
		return d.Body
	case FieldHeadingsH1:
		return joinLines(d.HeadingsH1)
	case FieldHeadingsH2:
		return joinLines(d.HeadingsH2)
	case FieldHeadingsOther:
		return joinLines(d.HeadingsOther)
	case FieldCodeBlocks:
		return joinLines(d.CodeBlocks)
	case FieldURLPath:
		return d.URLPathTokens
	default:
		return ""
	}
}

// TextSegments returns the named field's text as independent segments: one
// per heading/code-block entry for the multi-valued fields, or a single
// segment for the scalar fields. The indexer tokenizes each segment with
// its own position space, separated by analyzer.FieldGap, so a phrase
// bonus never straddles two unrelated headings that Text would otherwise
// have joined into one blob.
func (d *Document) TextSegments(field string) []string {
	switch field {
	case FieldTitle:
		return nonEmpty(d.Title)
	case FieldBody:
		return nonEmpty(d.Body)
	case FieldHeadingsH1:
		return d.HeadingsH1
	case FieldHeadingsH2:
		return d.HeadingsH2
	case FieldHeadingsOther:
		return d.HeadingsOther
	case FieldCodeBlocks:
		return d.CodeBlocks
	case FieldURLPath:
		return nonEmpty(d.URLPathTokens)
	default:
		return nil
	}
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func joinLines(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	total := 0
	for _, s := range ss {
		total += len(s) + 1
	}
	out := make([]byte, 0, total)
	for i, s := range ss {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, s...)
	}
	return string(out)
}
