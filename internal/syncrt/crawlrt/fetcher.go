package crawlrt

import (
	"context"

	"github.com/arcdocs/docsearch/internal/docmodel"
)

// Fetcher is the document-normalizer external collaborator named in the
// external interfaces contract: "fetch(url) → Document | <FetchFailed>
// with deterministic markdown output." crawlrt calls it for every URL the
// frontier yields and never re-implements HTML-to-markdown extraction
// itself. It also returns the outbound links discovered on the page so the
// frontier can keep expanding within the whitelist.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (doc docmodel.Document, links []string, err error)
}

// Throttled reports whether err represents a rate-limit signal the adaptive
// pool should react to (HTTP 429 or an equivalent transport-level signal).
// The definition is injected so crawlrt never hardcodes an HTTP status
// check against a non-HTTP Fetcher.
type Throttled func(err error) bool
