package docmodel

import "fmt"

// FieldKind classifies how a field's values are analyzed and stored.
type FieldKind string

const (
	// FieldKindText is tokenized by the field's analyzer profile and
	// indexed position-by-position.
	FieldKindText FieldKind = "text"
	// FieldKindKeyword is indexed as a single opaque token (no analysis).
	FieldKindKeyword FieldKind = "keyword"
	// FieldKindStored is never indexed, only retrievable via
	// segment.Reader's StoredDocument/StoredDocumentByKey.
	FieldKindStored FieldKind = "stored"
)

// FieldDescriptor describes one field of a Schema.
type FieldDescriptor struct {
	Name            string
	Kind            FieldKind
	Indexed         bool
	Stored          bool
	Boost           float64
	AnalyzerProfile string
	// UniqueKey marks the field holding the document's unique key. Exactly
	// one descriptor in a Schema must set this.
	UniqueKey bool
}

// Schema is an ordered list of field descriptors.
type Schema struct {
	Fields []FieldDescriptor
}

// Validate checks that exactly one field is the unique key and that every
// field name is non-empty and unique.
func (s *Schema) Validate() error {
	seen := make(map[string]bool, len(s.Fields))
	uniqueKeys := 0
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("docmodel: field descriptor has empty name")
		}
		if seen[f.Name] {
			return fmt.Errorf("docmodel: duplicate field name %q", f.Name)
		}
		seen[f.Name] = true
		if f.UniqueKey {
			uniqueKeys++
		}
	}
	if uniqueKeys != 1 {
		return fmt.Errorf("docmodel: schema must mark exactly one field as the unique key, found %d", uniqueKeys)
	}
	return nil
}

// IndexedFields returns the descriptors for fields that are indexed
// (FieldKindText or FieldKindKeyword with Indexed set), in schema order.
func (s *Schema) IndexedFields() []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Indexed && (f.Kind == FieldKindText || f.Kind == FieldKindKeyword) {
			out = append(out, f)
		}
	}
	return out
}

// Boost returns the configured boost for field, or 1.0 for unknown fields.
func (s *Schema) Boost(field string) float64 {
	for _, f := range s.Fields {
		if f.Name == field {
			if f.Boost == 0 {
				return 1.0
			}
			return f.Boost
		}
	}
	return 1.0
}

// DefaultBoosts are the spec's default per-field boosts (§4.2).
var DefaultBoosts = map[string]float64{
	FieldTitle:         2.5,
	FieldHeadingsH1:    2.5,
	FieldHeadingsH2:    2.0,
	FieldHeadingsOther: 1.5,
	FieldBody:          1.0,
	FieldCodeBlocks:    1.2,
	FieldURLPath:       1.5,
}

// DefaultSchema returns the schema used for a tenant unless overridden:
// title, body, headings, code blocks, and URL path tokens are text fields
// analyzed with profile; the key is a stored, non-analyzed keyword field.
func DefaultSchema(profile string) Schema {
	return Schema{Fields: []FieldDescriptor{
		{Name: "key", Kind: FieldKindKeyword, Stored: true, UniqueKey: true},
		{Name: FieldTitle, Kind: FieldKindText, Indexed: true, Stored: true, Boost: DefaultBoosts[FieldTitle], AnalyzerProfile: profile},
		{Name: FieldBody, Kind: FieldKindText, Indexed: true, Stored: true, Boost: DefaultBoosts[FieldBody], AnalyzerProfile: profile},
		{Name: FieldHeadingsH1, Kind: FieldKindText, Indexed: true, Stored: false, Boost: DefaultBoosts[FieldHeadingsH1], AnalyzerProfile: profile},
		{Name: FieldHeadingsH2, Kind: FieldKindText, Indexed: true, Stored: false, Boost: DefaultBoosts[FieldHeadingsH2], AnalyzerProfile: profile},
		{Name: FieldHeadingsOther, Kind: FieldKindText, Indexed: true, Stored: false, Boost: DefaultBoosts[FieldHeadingsOther], AnalyzerProfile: profile},
		{Name: FieldCodeBlocks, Kind: FieldKindText, Indexed: true, Stored: false, Boost: DefaultBoosts[FieldCodeBlocks], AnalyzerProfile: "code-friendly"},
		{Name: FieldURLPath, Kind: FieldKindText, Indexed: true, Stored: false, Boost: DefaultBoosts[FieldURLPath], AnalyzerProfile: profile},
	}}
}
